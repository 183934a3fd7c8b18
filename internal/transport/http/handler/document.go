package handler

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"kpbu-assistant/internal/app"
	"kpbu-assistant/internal/logging"
	"kpbu-assistant/internal/model"
	"kpbu-assistant/internal/transport/http/response"
)

const maxUploadSize = 10 << 20 // 10 MB

type DocumentIngester interface {
	Ingest(ctx context.Context, input app.IngestInput) (*app.IngestResult, error)
	ListDocuments(ctx context.Context, projectID string) ([]model.RAGDocument, error)
	DeleteDocument(ctx context.Context, id uint) error
}

type JobPublisher interface {
	Publish(ctx context.Context, job model.IngestJob) (string, error)
}

// DocumentHandler queues documents for ingestion. Without a publisher (nil or
// a nil pointer) the document is ingested within the request.
type DocumentHandler struct {
	ingester  DocumentIngester
	publisher JobPublisher
}

type CreateDocumentRequest struct {
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Content   string `json:"content" binding:"required"`
}

func NewDocumentHandler(ingester DocumentIngester, publisher JobPublisher) *DocumentHandler {
	if isNil(publisher) {
		publisher = nil
	}
	return &DocumentHandler{ingester: ingester, publisher: publisher}
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		response.Error(c, http.StatusBadRequest, "content is required")
		return
	}
	h.submit(c, model.IngestJob{
		ProjectID:    req.ProjectID,
		DocumentName: req.Name,
		FileType:     app.FileTypeText,
		Content:      req.Content,
	})
}

func (h *DocumentHandler) UploadPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "missing file")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, "file too large (max 10MB)")
		return
	}
	if app.FileTypeOf(file.Filename) != app.FileTypePDF {
		response.Error(c, http.StatusBadRequest, "only PDF files are allowed")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to read file")
		return
	}
	defer f.Close()

	text, err := app.ExtractContent(app.FileTypePDF, f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "failed to extract text from PDF")
		return
	}
	if strings.TrimSpace(text) == "" {
		response.Error(c, http.StatusBadRequest, "PDF contains no extractable text")
		return
	}

	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		name = filepath.Base(file.Filename)
	}
	h.submit(c, model.IngestJob{
		ProjectID:    c.PostForm("projectId"),
		DocumentName: name,
		FileType:     app.FileTypePDF,
		Content:      text,
	})
}

func (h *DocumentHandler) submit(c *gin.Context, job model.IngestJob) {
	if h.publisher != nil {
		jobID, err := h.publisher.Publish(c.Request.Context(), job)
		if err != nil {
			logging.Component("documents").Error().Err(err).Str("document", job.DocumentName).Msg("enqueue ingest job failed")
			response.Error(c, http.StatusInternalServerError, "failed to queue document")
			return
		}
		response.Accepted(c, gin.H{"jobId": jobID})
		return
	}

	result, err := h.ingester.Ingest(c.Request.Context(), app.IngestInput{
		ProjectID:    job.ProjectID,
		DocumentName: job.DocumentName,
		FileType:     job.FileType,
		Content:      job.Content,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "ingest failed")
		return
	}
	response.OK(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.ingester.ListDocuments(c.Request.Context(), c.Query("projectId"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list documents failed")
		return
	}
	response.OK(c, gin.H{
		"documents": docs,
		"total":     len(docs),
	})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "invalid document id")
		return
	}
	if err := h.ingester.DeleteDocument(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, app.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		logging.Component("documents").Error().Err(err).Uint64("document_id", id).Msg("delete document failed")
		response.Error(c, http.StatusInternalServerError, "delete document failed")
		return
	}
	response.OK(c, gin.H{"id": id})
}
