package repository

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"

	"gorm.io/gorm"

	"kpbu-assistant/internal/model"
)

const scanBatchSize = 500

// RAGChunkRepository is the vector index: chunks live in MySQL and queries
// scan them with cosine similarity.
type RAGChunkRepository struct {
	db        *gorm.DB
	batchSize int
}

func NewRAGChunkRepository(db *gorm.DB) *RAGChunkRepository {
	return &RAGChunkRepository{db: db, batchSize: scanBatchSize}
}

// Query returns the topK chunks most similar to vector. A non-empty filter
// restricts the scan to chunks whose project_id is in the filter set.
func (r *RAGChunkRepository) Query(ctx context.Context, vector []float32, topK int, filter *model.ScopeFilter) ([]model.RetrievedChunk, error) {
	if topK <= 0 || len(vector) == 0 {
		return nil, nil
	}

	q := r.db.WithContext(ctx).
		Model(&model.RAGChunk{}).
		Select("id", "vector_id", "project_id", "document_name", "content", "embedding")
	if filter != nil && len(filter.ProjectIDs) > 0 {
		q = q.Where("project_id IN ?", filter.ProjectIDs)
	}

	var (
		batch []model.RAGChunk
		best  []scoredChunk
	)
	res := q.FindInBatches(&batch, r.batchSize, func(tx *gorm.DB, _ int) error {
		best = append(best, scoreChunks(vector, batch)...)
		best = topScored(best, topK)
		return nil
	})
	if res.Error != nil {
		return nil, fmt.Errorf("scan rag chunks failed: %w", res.Error)
	}
	return toRetrieved(best), nil
}

type scoredChunk struct {
	chunk model.RAGChunk
	score float64
}

// scoreChunks skips chunks whose stored embedding is unreadable or of another
// dimension.
func scoreChunks(query []float32, chunks []model.RAGChunk) []scoredChunk {
	out := make([]scoredChunk, 0, len(chunks))
	for _, c := range chunks {
		vec := c.EmbeddingVector()
		if len(vec) != len(query) {
			continue
		}
		c.Embedding = ""
		out = append(out, scoredChunk{chunk: c, score: cosineSimilarity(query, vec)})
	}
	return out
}

// topScored sorts by descending score, then by chunk ID, and keeps k.
func topScored(scored []scoredChunk, k int) []scoredChunk {
	slices.SortFunc(scored, func(a, b scoredChunk) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(a.chunk.ID, b.chunk.ID)
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}

func toRetrieved(scored []scoredChunk) []model.RetrievedChunk {
	out := make([]model.RetrievedChunk, len(scored))
	for i, s := range scored {
		score := s.score
		out[i] = model.RetrievedChunk{
			ID:    s.chunk.VectorID,
			Score: &score,
			Metadata: model.ChunkMetadata{
				DocumentName: s.chunk.DocumentName,
				ProjectID:    s.chunk.ProjectID,
				Text:         s.chunk.Content,
			},
		}
	}
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
