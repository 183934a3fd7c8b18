package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kpbu-assistant/internal/model"
)

const chunkInsertBatchSize = 200

type RAGDocumentRepository struct {
	db *gorm.DB
}

func NewRAGDocumentRepository(db *gorm.DB) *RAGDocumentRepository {
	return &RAGDocumentRepository{db: db}
}

// CreateWithChunks stores the document and its chunks in one transaction and
// links every chunk to the new document ID.
func (r *RAGDocumentRepository) CreateWithChunks(ctx context.Context, doc *model.RAGDocument, chunks []model.RAGChunk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("create rag document failed: %w", err)
		}
		if len(chunks) == 0 {
			return nil
		}
		for i := range chunks {
			chunks[i].DocumentID = doc.ID
		}
		if err := tx.CreateInBatches(&chunks, chunkInsertBatchSize).Error; err != nil {
			return fmt.Errorf("create rag chunks batch failed: %w", err)
		}
		return nil
	})
}

// ListDocuments lists documents newest first; an empty projectID lists all.
func (r *RAGDocumentRepository) ListDocuments(ctx context.Context, projectID string) ([]model.RAGDocument, error) {
	q := r.db.WithContext(ctx)
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	var list []model.RAGDocument
	if err := q.Order("created_at DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list rag documents failed: %w", err)
	}
	return list, nil
}

func (r *RAGDocumentRepository) GetByID(ctx context.Context, id uint) (*model.RAGDocument, error) {
	var doc model.RAGDocument
	if err := r.db.WithContext(ctx).First(&doc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rag document failed: %w", err)
	}
	return &doc, nil
}

// Delete removes a document and its chunks.
func (r *RAGDocumentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&model.RAGChunk{}).Error; err != nil {
			return fmt.Errorf("delete rag chunks by document failed: %w", err)
		}
		if err := tx.Delete(&model.RAGDocument{}, id).Error; err != nil {
			return fmt.Errorf("delete rag document failed: %w", err)
		}
		return nil
	})
}
