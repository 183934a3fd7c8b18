package model

import (
	"time"

	"github.com/goccy/go-json"
)

// RAGChunk stores one text chunk of a KPBU document and its embedding.
// Embedding is stored as JSON array of float32 for portability.
type RAGChunk struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	VectorID     string    `gorm:"size:36;not null;uniqueIndex" json:"vector_id"`
	DocumentID   uint      `gorm:"not null;index" json:"document_id"`
	ProjectID    string    `gorm:"size:64;not null;index" json:"project_id"`
	DocumentName string    `gorm:"size:256;not null" json:"document_name"`
	ChunkIndex   int       `gorm:"not null" json:"chunk_index"`
	TotalChunks  int       `gorm:"not null" json:"total_chunks"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Embedding    string    `gorm:"type:mediumtext" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// EmbeddingVector returns the parsed embedding slice; empty on parse error.
func (c *RAGChunk) EmbeddingVector() []float32 {
	if c.Embedding == "" {
		return nil
	}
	var v []float32
	if err := json.Unmarshal([]byte(c.Embedding), &v); err != nil {
		return nil
	}
	return v
}

// SetEmbedding stores the embedding as JSON.
func (c *RAGChunk) SetEmbedding(vec []float32) {
	if len(vec) == 0 {
		c.Embedding = "[]"
		return
	}
	b, _ := json.Marshal(vec)
	c.Embedding = string(b)
}
