package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"kpbu-assistant/internal/app"
	"kpbu-assistant/internal/logging"
	"kpbu-assistant/internal/model"
	"kpbu-assistant/internal/transport/http/response"
)

const (
	defaultHistoryLimit = 20
	historyWriteTimeout = 2 * time.Second
)

type Answerer interface {
	Answer(ctx context.Context, input app.AnswerInput) (*model.AnswerResult, error)
}

type ChatHistory interface {
	Append(ctx context.Context, sessionID string, turn model.ChatTurn) error
	Recent(ctx context.Context, sessionID string, limit int) ([]model.ChatTurn, error)
}

type ChatHandler struct {
	answerer            Answerer
	history             ChatHistory
	providersConfigured bool
}

// AskRequest accepts both the current field names and the legacy
// pertanyaan_user / konteks_sesi ones.
type AskRequest struct {
	Question       string      `json:"question"`
	ScopeIDs       []ScopeItem `json:"scopeIds"`
	SessionID      string      `json:"sessionId"`
	LegacyQuestion string      `json:"pertanyaan_user"`
	LegacyScope    []ScopeItem `json:"konteks_sesi"`
}

// ScopeItem is a project ID given either as a string, a number or an object
// carrying ID_Proyek.
type ScopeItem string

func (s *ScopeItem) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = ScopeItem(v)
	case b[0] == '{':
		var v struct {
			IDProyek json.RawMessage `json:"ID_Proyek"`
		}
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		if len(v.IDProyek) == 0 {
			*s = ""
			return nil
		}
		return s.UnmarshalJSON(v.IDProyek)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("scope item must be a string or an object with ID_Proyek")
		}
		*s = ScopeItem(n.String())
	}
	return nil
}

func (r AskRequest) input() app.AnswerInput {
	question := r.Question
	if strings.TrimSpace(question) == "" {
		question = r.LegacyQuestion
	}
	items := r.ScopeIDs
	if len(items) == 0 {
		items = r.LegacyScope
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it != "" {
			ids = append(ids, string(it))
		}
	}
	return app.AnswerInput{Question: question, ScopeIDs: ids}
}

func NewChatHandler(answerer Answerer, history ChatHistory, providersConfigured bool) *ChatHandler {
	if isNil(history) {
		history = nil
	}
	return &ChatHandler{
		answerer:            answerer,
		history:             history,
		providersConfigured: providersConfigured,
	}
}

func (h *ChatHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	input := req.input()
	result, err := h.answerer.Answer(c.Request.Context(), input)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to answer question")
		return
	}

	if sessionID := strings.TrimSpace(req.SessionID); sessionID != "" && h.history != nil {
		h.remember(c.Request.Context(), sessionID, input, result)
	}
	c.JSON(http.StatusOK, result)
}

// remember stores the turn; failures are logged and never reach the caller.
func (h *ChatHandler) remember(ctx context.Context, sessionID string, input app.AnswerInput, result *model.AnswerResult) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()

	turn := model.ChatTurn{
		Question:    strings.TrimSpace(input.Question),
		Answer:      result.Answer,
		ScopeIDs:    result.Metadata.ScopeIDs,
		ChunksFound: result.Metadata.ChunksFound,
		CreatedAt:   result.Metadata.Timestamp,
	}
	if err := h.history.Append(ctx, sessionID, turn); err != nil {
		logging.Component("chat").Warn().Err(err).Str("session_id", sessionID).Msg("store chat turn failed")
	}
}

func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":                 "healthy",
		"service":                "KPBU Chat API",
		"version":                "1.0.0",
		"environment_configured": h.providersConfigured,
		"timestamp":              time.Now().UTC(),
	})
}

func (h *ChatHandler) History(c *gin.Context) {
	if h.history == nil {
		response.Error(c, http.StatusServiceUnavailable, "chat history is not available")
		return
	}
	sessionID := strings.TrimSpace(c.Query("sessionId"))
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, "sessionId is required")
		return
	}
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	turns, err := h.history.Recent(c.Request.Context(), sessionID, limit)
	if err != nil {
		logging.Component("chat").Error().Err(err).Str("session_id", sessionID).Msg("read chat history failed")
		response.Error(c, http.StatusInternalServerError, "failed to read chat history")
		return
	}
	response.OK(c, gin.H{
		"sessionId": sessionID,
		"turns":     turns,
	})
}
