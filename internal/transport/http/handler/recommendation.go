package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"kpbu-assistant/internal/app"
	"kpbu-assistant/internal/model"
	"kpbu-assistant/internal/transport/http/response"
)

const recommendationMessage = "Rekomendasi proyek berhasil digenerate"

type Recommender interface {
	Recommend(ctx context.Context, pref model.PreferenceProfile) (*app.RecommendationResult, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
}

type RecommendationHandler struct {
	recommender Recommender
}

func NewRecommendationHandler(recommender Recommender) *RecommendationHandler {
	return &RecommendationHandler{recommender: recommender}
}

func (h *RecommendationHandler) Recommend(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid preferences data")
		return
	}
	var pref *model.PreferenceProfile
	if err := json.Unmarshal(body, &pref); err != nil || pref == nil {
		response.Error(c, http.StatusBadRequest, "Invalid preferences data")
		return
	}
	h.respond(c, *pref)
}

// RecommendByQuery reads the profile from query parameters. Unlike the JSON
// endpoint, risk tolerance defaults to medium here.
func (h *RecommendationHandler) RecommendByQuery(c *gin.Context) {
	pref, err := preferencesFromQuery(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	h.respond(c, pref)
}

func (h *RecommendationHandler) respond(c *gin.Context, pref model.PreferenceProfile) {
	result, err := h.recommender.Recommend(c.Request.Context(), pref)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "Terjadi kesalahan dalam menggenerate rekomendasi")
		return
	}
	response.OKWithMessage(c, result, recommendationMessage)
}

func (h *RecommendationHandler) ListProjects(c *gin.Context) {
	projects, err := h.recommender.ListProjects(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list projects failed")
		return
	}
	response.OK(c, gin.H{
		"projects": projects,
		"total":    len(projects),
	})
}

func preferencesFromQuery(c *gin.Context) (model.PreferenceProfile, error) {
	pref := model.PreferenceProfile{
		PreferredSectors:       splitList(c.Query("sectors")),
		RiskTolerance:          model.Level(c.DefaultQuery("risk_tolerance", string(model.LevelMedium))),
		PreferredLocations:     splitList(c.Query("locations")),
		GovernmentSupportLevel: model.Level(c.Query("government_support")),
		MarketDemandLevel:      model.Level(c.Query("market_demand")),
		Interests:              splitList(c.Query("interests")),
		Keywords:               splitList(c.Query("keywords")),
		PreferredComplexity:    model.Level(c.Query("complexity")),
		SustainabilityFocus:    c.Query("sustainability") == "true",
		TechnologyFocus:        c.Query("technology") == "true",
	}
	if pref.RiskTolerance == "" {
		pref.RiskTolerance = model.LevelMedium
	}

	if raw := c.Query("investment_range"); raw != "" {
		r, err := model.ParseInvestmentRange(raw)
		if err != nil {
			return pref, fmt.Errorf("invalid investment_range: %w", err)
		}
		pref.InvestmentRange = &r
	}
	if raw := c.Query("max_duration"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return pref, fmt.Errorf("invalid max_duration %q", raw)
		}
		pref.MaxDuration = v
	}
	if raw := c.Query("expected_roi"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return pref, fmt.Errorf("invalid expected_roi %q", raw)
		}
		pref.ExpectedROI = v
	}
	return pref, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
