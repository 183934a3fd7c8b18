package app

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")

	// Stage failures of the answering pipeline. They wrap the provider error.
	ErrEmbeddingFailed  = errors.New("embedding failed")
	ErrRetrievalFailed  = errors.New("retrieval failed")
	ErrGenerationFailed = errors.New("generation failed")

	ErrIngestFailed     = errors.New("ingest failed")
	ErrDocumentNotFound = errors.New("document not found")
)
