package app

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpbu-assistant/internal/model"
)

type fakeBatchEmbedder struct {
	batches [][]string
	err     error
	short   bool
}

func (f *fakeBatchEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1}
	}
	if f.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

type fakeDocumentStore struct {
	doc     *model.RAGDocument
	chunks  []model.RAGChunk
	err     error
	listed  string
	deleted []uint
}

func (f *fakeDocumentStore) CreateWithChunks(ctx context.Context, doc *model.RAGDocument, chunks []model.RAGChunk) error {
	if f.err != nil {
		return f.err
	}
	doc.ID = 42
	f.doc = doc
	f.chunks = chunks
	return nil
}

func (f *fakeDocumentStore) ListDocuments(ctx context.Context, projectID string) ([]model.RAGDocument, error) {
	f.listed = projectID
	return []model.RAGDocument{{ID: 1, ProjectID: projectID}}, f.err
}

func (f *fakeDocumentStore) GetByID(ctx context.Context, id uint) (*model.RAGDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.doc == nil || f.doc.ID != id {
		return nil, nil
	}
	return f.doc, nil
}

func (f *fakeDocumentStore) Delete(ctx context.Context, id uint) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func TestIngest_StoresChunksWithMetadata(t *testing.T) {
	emb := &fakeBatchEmbedder{}
	store := &fakeDocumentStore{}
	svc := NewIngestService(emb, store, IngestConfig{ChunkSize: 10, ChunkOverlap: 0, EmbeddingBatchSize: 2})

	res, err := svc.Ingest(context.Background(), IngestInput{
		ProjectID:    " 1 ",
		DocumentName: "tol.txt",
		FileType:     FileTypeText,
		Content:      "aaaa\n\nbbbb\n\ncccc dddd eeee",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(42), res.Document.ID)
	assert.Equal(t, "1", res.Document.ProjectID)
	assert.Equal(t, FileTypeText, res.Document.FileType)
	require.Equal(t, 3, res.ChunkCount)
	assert.Equal(t, 3, store.doc.ChunkCount)

	// batch size 2 over 3 chunks
	require.Len(t, emb.batches, 2)
	assert.Len(t, emb.batches[0], 2)
	assert.Len(t, emb.batches[1], 1)

	seen := map[string]bool{}
	for i, c := range store.chunks {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, 3, c.TotalChunks)
		assert.Equal(t, "1", c.ProjectID)
		assert.Equal(t, "tol.txt", c.DocumentName)
		assert.Equal(t, []float32{float32(len(c.Content)), 1}, c.EmbeddingVector())
		_, err := uuid.Parse(c.VectorID)
		assert.NoError(t, err)
		assert.False(t, seen[c.VectorID])
		seen[c.VectorID] = true
	}
	assert.Equal(t, "aaaa\n\nbbbb", store.chunks[0].Content)
}

func TestIngest_DefaultsProjectAndName(t *testing.T) {
	store := &fakeDocumentStore{}
	svc := NewIngestService(&fakeBatchEmbedder{}, store, IngestConfig{})

	res, err := svc.Ingest(context.Background(), IngestInput{Content: "isi dokumen"})
	require.NoError(t, err)
	assert.Equal(t, "unknown", res.Document.ProjectID)
	assert.Equal(t, "Untitled", res.Document.Name)
	assert.Equal(t, "unknown", store.chunks[0].ProjectID)
}

func TestIngest_Failures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		emb     *fakeBatchEmbedder
		store   *fakeDocumentStore
		content string
		wantErr error
	}{
		{"empty content", &fakeBatchEmbedder{}, &fakeDocumentStore{}, "  \n ", ErrInvalidInput},
		{"embedding error", &fakeBatchEmbedder{err: boom}, &fakeDocumentStore{}, "teks", ErrIngestFailed},
		{"count mismatch", &fakeBatchEmbedder{short: true}, &fakeDocumentStore{}, "teks", ErrIngestFailed},
		{"store error", &fakeBatchEmbedder{}, &fakeDocumentStore{err: boom}, "teks", ErrIngestFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewIngestService(tt.emb, tt.store, IngestConfig{})
			res, err := svc.Ingest(context.Background(), IngestInput{Content: tt.content})
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, tt.store.doc)
		})
	}
}

func TestListDocuments_TrimsProject(t *testing.T) {
	store := &fakeDocumentStore{}
	docs, err := NewIngestService(&fakeBatchEmbedder{}, store, IngestConfig{}).ListDocuments(context.Background(), " 3 ")
	require.NoError(t, err)
	assert.Equal(t, "3", store.listed)
	assert.Len(t, docs, 1)
}

func TestDeleteDocument(t *testing.T) {
	store := &fakeDocumentStore{doc: &model.RAGDocument{ID: 7, Name: "tol.pdf"}}
	svc := NewIngestService(&fakeBatchEmbedder{}, store, IngestConfig{})

	require.NoError(t, svc.DeleteDocument(context.Background(), 7))
	assert.Equal(t, []uint{7}, store.deleted)

	err := svc.DeleteDocument(context.Background(), 8)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.Equal(t, []uint{7}, store.deleted)

	store.err = errors.New("db down")
	assert.ErrorContains(t, svc.DeleteDocument(context.Background(), 7), "db down")
}

func TestFileTypeOf(t *testing.T) {
	assert.Equal(t, FileTypePDF, FileTypeOf("Dokumen/Studi.PDF"))
	assert.Equal(t, FileTypeText, FileTypeOf("catatan.txt"))
	assert.Equal(t, FileTypeDocx, FileTypeOf("Kajian.DOCX"))
	assert.Equal(t, "", FileTypeOf("kajian.doc"))
	assert.Equal(t, "", FileTypeOf("README"))
}

func TestExtractContent(t *testing.T) {
	text, err := ExtractContent(FileTypeText, strings.NewReader("halo"))
	require.NoError(t, err)
	assert.Equal(t, "halo", text)

	_, err = ExtractContent("odt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ExtractContent(FileTypeDocx, strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ExtractContent(FileTypePDF, strings.NewReader("not a pdf"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExtractContent_Docx(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>Air bersih</w:t></w:r></w:p><w:p><w:r><w:t>Kota Medan</w:t></w:r></w:p></w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	text, err := ExtractContent(FileTypeDocx, &buf)
	require.NoError(t, err)
	assert.Equal(t, "Air bersih\nKota Medan", text)
}
