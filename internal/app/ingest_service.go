package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"kpbu-assistant/internal/logging"
	"kpbu-assistant/internal/metrics"
	"kpbu-assistant/internal/model"
	"kpbu-assistant/internal/pkg/docxextract"
	"kpbu-assistant/internal/pkg/pdfextract"
	"kpbu-assistant/internal/pkg/textsplit"
)

const (
	defaultEmbeddingBatchSize = 100
	unknownProjectID          = "unknown"
	untitledDocument          = "Untitled"

	FileTypePDF  = "pdf"
	FileTypeText = "txt"
	FileTypeDocx = "docx"
)

type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// DocumentStore persists a document and its chunks as one unit.
type DocumentStore interface {
	CreateWithChunks(ctx context.Context, doc *model.RAGDocument, chunks []model.RAGChunk) error
	ListDocuments(ctx context.Context, projectID string) ([]model.RAGDocument, error)
	GetByID(ctx context.Context, id uint) (*model.RAGDocument, error)
	Delete(ctx context.Context, id uint) error
}

type IngestConfig struct {
	ChunkSize          int
	ChunkOverlap       int
	EmbeddingBatchSize int
}

type IngestService struct {
	embedder  BatchEmbedder
	store     DocumentStore
	splitter  *textsplit.Splitter
	batchSize int
}

func NewIngestService(embedder BatchEmbedder, store DocumentStore, cfg IngestConfig) *IngestService {
	batch := cfg.EmbeddingBatchSize
	if batch <= 0 {
		batch = defaultEmbeddingBatchSize
	}
	return &IngestService{
		embedder:  embedder,
		store:     store,
		splitter:  textsplit.New(cfg.ChunkSize, cfg.ChunkOverlap),
		batchSize: batch,
	}
}

type IngestInput struct {
	ProjectID    string
	DocumentName string
	FileType     string
	Content      string
}

type IngestResult struct {
	Document   model.RAGDocument `json:"document"`
	ChunkCount int               `json:"chunkCount"`
}

// Ingest splits the content, embeds every chunk and stores the document with
// its chunks. Chunks without a project are filed under "unknown".
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		metrics.DocumentsIngested.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: document content is empty", ErrInvalidInput)
	}
	projectID := strings.TrimSpace(input.ProjectID)
	if projectID == "" {
		projectID = unknownProjectID
	}
	name := strings.TrimSpace(input.DocumentName)
	if name == "" {
		name = untitledDocument
	}
	log := logging.Component("ingest").With().Str("document", name).Str("project_id", projectID).Logger()

	texts := s.splitter.Split(content)
	if len(texts) == 0 {
		metrics.DocumentsIngested.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: document has no text", ErrInvalidInput)
	}

	embeddings, err := s.embedAll(ctx, texts)
	if err != nil {
		metrics.DocumentsIngested.WithLabelValues("failed").Inc()
		log.Error().Err(err).Int("chunks", len(texts)).Msg("embedding document failed")
		return nil, err
	}

	doc := &model.RAGDocument{
		ProjectID:  projectID,
		Name:       name,
		FileType:   input.FileType,
		ChunkCount: len(texts),
	}
	chunks := make([]model.RAGChunk, len(texts))
	for i, text := range texts {
		chunks[i] = model.RAGChunk{
			VectorID:     uuid.NewString(),
			ProjectID:    projectID,
			DocumentName: name,
			ChunkIndex:   i,
			TotalChunks:  len(texts),
			Content:      text,
		}
		chunks[i].SetEmbedding(embeddings[i])
	}
	if err := s.store.CreateWithChunks(ctx, doc, chunks); err != nil {
		metrics.DocumentsIngested.WithLabelValues("failed").Inc()
		log.Error().Err(err).Msg("storing document failed")
		return nil, fmt.Errorf("%w: %w", ErrIngestFailed, err)
	}

	metrics.DocumentsIngested.WithLabelValues("ingested").Inc()
	log.Info().Uint("document_id", doc.ID).Int("chunks", len(chunks)).Msg("document ingested")
	return &IngestResult{Document: *doc, ChunkCount: len(chunks)}, nil
}

func (s *IngestService) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := min(start+s.batchSize, len(texts))
		batch, err := s.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: embed chunks %d-%d: %w", ErrIngestFailed, start, end-1, err)
		}
		embeddings = append(embeddings, batch...)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d chunks", ErrIngestFailed, len(embeddings), len(texts))
	}
	for i, v := range embeddings {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty embedding for chunk %d", ErrIngestFailed, i)
		}
	}
	return embeddings, nil
}

// ListDocuments returns ingested documents, newest first. An empty projectID
// lists everything.
func (s *IngestService) ListDocuments(ctx context.Context, projectID string) ([]model.RAGDocument, error) {
	return s.store.ListDocuments(ctx, strings.TrimSpace(projectID))
}

// DeleteDocument removes a document and every chunk indexed from it.
func (s *IngestService) DeleteDocument(ctx context.Context, id uint) error {
	doc, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logging.Component("ingest").Info().Uint("document_id", id).Str("document", doc.Name).Msg("document deleted")
	return nil
}

// FileTypeOf maps a file name to a supported file type, or "" when unsupported.
func FileTypeOf(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FileTypePDF
	case ".txt":
		return FileTypeText
	case ".docx":
		return FileTypeDocx
	}
	return ""
}

// ExtractContent returns the plain text of a document of the given file type.
func ExtractContent(fileType string, r io.Reader) (string, error) {
	switch fileType {
	case FileTypePDF:
		text, err := pdfextract.ExtractText(r)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return text, nil
	case FileTypeDocx:
		text, err := docxextract.ExtractText(r)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return text, nil
	case FileTypeText:
		b, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return "", fmt.Errorf("%w: unsupported file type %q", ErrInvalidInput, fileType)
}
