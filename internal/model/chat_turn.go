package model

import "time"

// ChatTurn is one question/answer exchange kept in a session transcript.
type ChatTurn struct {
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	ScopeIDs    []string  `json:"scopeIds,omitempty"`
	ChunksFound int       `json:"chunksFound"`
	CreatedAt   time.Time `json:"createdAt"`
}
