package app

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"kpbu-assistant/internal/metrics"
	"kpbu-assistant/internal/model"
	"kpbu-assistant/internal/repository"
)

const RecommendationAlgorithm = "Rule-Based & Content-Based Hybrid Matching"

type RecommendService struct {
	projects repository.ProjectRepository
	limit    int
}

func NewRecommendService(projects repository.ProjectRepository) *RecommendService {
	return &RecommendService{
		projects: projects,
		limit:    defaultRecommendations,
	}
}

type RecommendationResult struct {
	Recommendations []model.ScoredProject   `json:"recommendations"`
	Preferences     model.PreferenceProfile `json:"preferences"`
	Total           int                     `json:"total"`
	Algorithm       string                  `json:"algorithm"`
}

// Recommend scores the whole catalog against the profile and returns the best
// matches, highest final score first. Equal scores are ordered by project ID.
func (s *RecommendService) Recommend(ctx context.Context, pref model.PreferenceProfile) (*RecommendationResult, error) {
	if err := pref.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	pref = pref.Normalize()

	projects, err := s.projects.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects failed: %w", err)
	}

	scored := make([]model.ScoredProject, 0, len(projects))
	for _, p := range projects {
		scored = append(scored, scoreProject(p, pref))
	}
	slices.SortStableFunc(scored, func(a, b model.ScoredProject) int {
		if c := cmp.Compare(b.Scores.FinalScore, a.Scores.FinalScore); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(scored) > s.limit {
		scored = scored[:s.limit]
	}

	metrics.RecommendationsServed.Inc()
	return &RecommendationResult{
		Recommendations: scored,
		Preferences:     pref,
		Total:           len(scored),
		Algorithm:       RecommendationAlgorithm,
	}, nil
}

// ListProjects exposes the catalog unchanged.
func (s *RecommendService) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.projects.ListProjects(ctx)
}
