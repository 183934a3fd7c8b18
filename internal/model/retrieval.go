package model

import "time"

// ChunkMetadata is what the vector index stores next to every vector.
type ChunkMetadata struct {
	DocumentName string `json:"document_name"`
	ProjectID    string `json:"project_id"`
	Text         string `json:"text"`
}

// RetrievedChunk is a single nearest-neighbour match. Score is nil when the
// index did not report one.
type RetrievedChunk struct {
	ID       string        `json:"id"`
	Score    *float64      `json:"score,omitempty"`
	Metadata ChunkMetadata `json:"metadata"`
}

type Source struct {
	Document  string `json:"document"`
	ProjectID string `json:"projectId"`
	Score     string `json:"score"`
}

type AnswerMetadata struct {
	ChunksFound int       `json:"chunksFound"`
	ScopeIDs    []string  `json:"scopeIds"`
	Sources     []Source  `json:"sources,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type AnswerResult struct {
	Success  bool           `json:"success"`
	Answer   string         `json:"answer"`
	Metadata AnswerMetadata `json:"metadata"`
}

// ScopeFilter restricts retrieval to chunks whose project_id is in ProjectIDs.
type ScopeFilter struct {
	ProjectIDs []string
}
