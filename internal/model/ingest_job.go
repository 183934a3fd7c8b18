package model

// IngestJob is the queue payload asking a worker to index one document.
type IngestJob struct {
	JobID        string `json:"job_id"`
	ProjectID    string `json:"project_id"`
	DocumentName string `json:"document_name"`
	FileType     string `json:"file_type"`
	Content      string `json:"content"`
}
