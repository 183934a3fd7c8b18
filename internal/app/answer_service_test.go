package app

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpbu-assistant/internal/ai"
	"kpbu-assistant/internal/model"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vector, f.err
}

type fakeIndex struct {
	chunks    []model.RetrievedChunk
	err       error
	calls     int
	gotTopK   int
	gotFilter *model.ScopeFilter
	gotVector []float32
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int, filter *model.ScopeFilter) ([]model.RetrievedChunk, error) {
	f.calls++
	f.gotTopK = topK
	f.gotFilter = filter
	f.gotVector = vector
	return f.chunks, f.err
}

type fakeGenerator struct {
	text      string
	err       error
	calls     int
	gotPrompt string
	gotConfig ai.GenerationConfig
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, cfg ai.GenerationConfig) (string, error) {
	f.calls++
	f.gotPrompt = prompt
	f.gotConfig = cfg
	return f.text, f.err
}

func score(v float64) *float64 { return &v }

func chunk(doc, project, text string, s *float64) model.RetrievedChunk {
	return model.RetrievedChunk{
		Score:    s,
		Metadata: model.ChunkMetadata{DocumentName: doc, ProjectID: project, Text: text},
	}
}

func newTestAnswerService(e *fakeEmbedder, i *fakeIndex, g *fakeGenerator) *AnswerService {
	svc := NewAnswerService(e, i, g, AnswerConfig{
		TopK:               5,
		EmbeddingDimension: 3,
		Generation:         ai.DefaultGenerationConfig(),
	})
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func TestAnswer_Success(t *testing.T) {
	emb := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	idx := &fakeIndex{chunks: []model.RetrievedChunk{
		chunk("tol.pdf", "1", "Jalan tol sepanjang 140 km", score(0.91234)),
		chunk("rs.pdf", "2", "Rumah sakit tipe B", score(0.8)),
	}}
	gen := &fakeGenerator{text: "Proyek tol bernilai 5-10 triliun."}

	res, err := newTestAnswerService(emb, idx, gen).Answer(context.Background(), AnswerInput{
		Question: "  Berapa nilai proyek tol?  ",
		ScopeIDs: []string{"1", " ", "2", "1"},
	})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "Proyek tol bernilai 5-10 triliun.", res.Answer)
	assert.Equal(t, 2, res.Metadata.ChunksFound)
	assert.Equal(t, []string{"1", "2"}, res.Metadata.ScopeIDs)
	assert.Equal(t, []model.Source{
		{Document: "tol.pdf", ProjectID: "1", Score: "0.9123"},
		{Document: "rs.pdf", ProjectID: "2", Score: "0.8000"},
	}, res.Metadata.Sources)

	assert.Equal(t, 5, idx.gotTopK)
	require.NotNil(t, idx.gotFilter)
	assert.Equal(t, []string{"1", "2"}, idx.gotFilter.ProjectIDs)
	assert.Equal(t, ai.DefaultGenerationConfig(), gen.gotConfig)
	assert.Contains(t, gen.gotPrompt, "PERTANYAAN PENGGUNA: Berapa nilai proyek tol?")
}

func TestAnswer_NoScopeMeansNoFilter(t *testing.T) {
	idx := &fakeIndex{chunks: []model.RetrievedChunk{chunk("a", "1", "x", score(1))}}

	_, err := newTestAnswerService(&fakeEmbedder{vector: []float32{1, 2, 3}}, idx, &fakeGenerator{text: "ok"}).
		Answer(context.Background(), AnswerInput{Question: "q"})
	require.NoError(t, err)
	assert.Nil(t, idx.gotFilter)
}

func TestAnswer_ZeroMatchesSkipsGeneration(t *testing.T) {
	gen := &fakeGenerator{text: "should not be used"}

	res, err := newTestAnswerService(&fakeEmbedder{vector: []float32{1, 2, 3}}, &fakeIndex{}, gen).
		Answer(context.Background(), AnswerInput{Question: "apa saja?", ScopeIDs: []string{"9"}})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, NoContextAnswer, res.Answer)
	assert.Equal(t, 0, res.Metadata.ChunksFound)
	assert.Equal(t, []string{"9"}, res.Metadata.ScopeIDs)
	assert.Empty(t, res.Metadata.Sources)
	assert.Zero(t, gen.calls)
}

func TestAnswer_ValidationMakesNoRemoteCalls(t *testing.T) {
	emb := &fakeEmbedder{vector: []float32{1, 2, 3}}
	idx := &fakeIndex{}
	gen := &fakeGenerator{}

	_, err := newTestAnswerService(emb, idx, gen).Answer(context.Background(), AnswerInput{Question: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, emb.calls)
	assert.Zero(t, idx.calls)
	assert.Zero(t, gen.calls)
}

func TestAnswer_StageFailures(t *testing.T) {
	boom := errors.New("boom")
	good := []float32{1, 2, 3}
	someChunks := []model.RetrievedChunk{chunk("a", "1", "x", score(0.5))}

	tests := []struct {
		name    string
		emb     *fakeEmbedder
		idx     *fakeIndex
		gen     *fakeGenerator
		wantErr error
		genUsed bool
	}{
		{"embed error", &fakeEmbedder{err: boom}, &fakeIndex{}, &fakeGenerator{}, ErrEmbeddingFailed, false},
		{"empty vector", &fakeEmbedder{vector: nil}, &fakeIndex{}, &fakeGenerator{}, ErrEmbeddingFailed, false},
		{"wrong dimension", &fakeEmbedder{vector: []float32{1, 2}}, &fakeIndex{}, &fakeGenerator{}, ErrEmbeddingFailed, false},
		{"nan value", &fakeEmbedder{vector: []float32{1, float32(math.NaN()), 3}}, &fakeIndex{}, &fakeGenerator{}, ErrEmbeddingFailed, false},
		{"index error", &fakeEmbedder{vector: good}, &fakeIndex{err: boom}, &fakeGenerator{}, ErrRetrievalFailed, false},
		{"generate error", &fakeEmbedder{vector: good}, &fakeIndex{chunks: someChunks}, &fakeGenerator{err: boom}, ErrGenerationFailed, true},
		{"blank completion", &fakeEmbedder{vector: good}, &fakeIndex{chunks: someChunks}, &fakeGenerator{text: " \n "}, ErrGenerationFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestAnswerService(tt.emb, tt.idx, tt.gen).
				Answer(context.Background(), AnswerInput{Question: "q"})
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.NotErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, tt.genUsed, tt.gen.calls > 0)
		})
	}
}

func TestAnswer_RetrievalErrorKeepsCause(t *testing.T) {
	cause := errors.New("index unavailable")

	_, err := newTestAnswerService(&fakeEmbedder{vector: []float32{1, 2, 3}}, &fakeIndex{err: cause}, &fakeGenerator{}).
		Answer(context.Background(), AnswerInput{Question: "q"})
	assert.ErrorIs(t, err, ErrRetrievalFailed)
	assert.ErrorIs(t, err, cause)
}

func TestAnswer_ResortsChunksByScore(t *testing.T) {
	idx := &fakeIndex{chunks: []model.RetrievedChunk{
		chunk("low", "1", "low", score(0.1)),
		chunk("none", "1", "none", nil),
		chunk("high", "2", "high", score(0.9)),
		chunk("mid", "3", "mid", score(0.5)),
	}}

	res, err := newTestAnswerService(&fakeEmbedder{vector: []float32{1, 2, 3}}, idx, &fakeGenerator{text: "ok"}).
		Answer(context.Background(), AnswerInput{Question: "q"})
	require.NoError(t, err)

	docs := make([]string, 0, len(res.Metadata.Sources))
	for _, s := range res.Metadata.Sources {
		docs = append(docs, s.Document)
	}
	assert.Equal(t, []string{"high", "mid", "low", "none"}, docs)
	assert.Equal(t, "N/A", res.Metadata.Sources[3].Score)
}

func TestAnswer_MissingMetadataRendersUnknown(t *testing.T) {
	idx := &fakeIndex{chunks: []model.RetrievedChunk{chunk("", "", "isi", score(0.3))}}
	gen := &fakeGenerator{text: "ok"}

	res, err := newTestAnswerService(&fakeEmbedder{vector: []float32{1, 2, 3}}, idx, gen).
		Answer(context.Background(), AnswerInput{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, model.Source{Document: "Unknown", ProjectID: "Unknown", Score: "0.3000"}, res.Metadata.Sources[0])
	assert.Contains(t, gen.gotPrompt, "Sumber: Unknown\nID Proyek: Unknown\nKonten: isi")
}

func TestNewAnswerService_DefaultsTopK(t *testing.T) {
	idx := &fakeIndex{}
	svc := NewAnswerService(&fakeEmbedder{vector: []float32{1}}, idx, &fakeGenerator{}, AnswerConfig{})

	_, err := svc.Answer(context.Background(), AnswerInput{Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, 5, idx.gotTopK)
}
