package model

import "time"

type RAGDocument struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProjectID  string    `gorm:"size:64;not null;index" json:"project_id"`
	Name       string    `gorm:"size:256;not null" json:"name"`
	FileType   string    `gorm:"size:16" json:"file_type"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}
