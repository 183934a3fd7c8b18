package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpbu-assistant/internal/model"
	"kpbu-assistant/internal/repository"
)

type failingProjectRepository struct{ err error }

func (r failingProjectRepository) ListProjects(ctx context.Context) ([]model.Project, error) {
	return nil, r.err
}

func newTestRecommendService() *RecommendService {
	return NewRecommendService(repository.NewDefaultProjectRepository())
}

func projectIDs(items []model.ScoredProject) []int {
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func catalogProject(t *testing.T, id int) model.Project {
	t.Helper()
	for _, p := range repository.DefaultProjects() {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("project %d not in catalog", id)
	return model.Project{}
}

func TestRecommend_TollRoadScenario(t *testing.T) {
	res, err := newTestRecommendService().Recommend(context.Background(), model.PreferenceProfile{
		PreferredSectors: []string{"Transportation"},
		RiskTolerance:    model.LevelMedium,
		ExpectedROI:      10,
	})
	require.NoError(t, err)

	require.Len(t, res.Recommendations, 5)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, RecommendationAlgorithm, res.Algorithm)

	top := res.Recommendations[0]
	assert.Equal(t, 1, top.ID)
	assert.Equal(t, 50.0, top.Scores.RuleBasedScore)
	assert.Equal(t, 0.0, top.Scores.ContentBasedScore)
	assert.Equal(t, 30.0, top.Scores.FinalScore)
	assert.Equal(t, []string{
		"Sektor Transportation sesuai dengan preferensi Anda",
		"Tingkat risiko medium cocok dengan toleransi risiko Anda",
		"ROI estimasi 12.5% memenuhi ekspektasi Anda",
		"Mendapat dukungan pemerintah yang tinggi",
		"Permintaan pasar yang tinggi",
	}, top.MatchReasons)

	// 5, 7 and 8 tie at 15 and keep ID order.
	assert.Equal(t, []int{1, 5, 7, 8, 3}, projectIDs(res.Recommendations))
}

func TestRecommend_OrderingAndBounds(t *testing.T) {
	profiles := []model.PreferenceProfile{
		{},
		{RiskTolerance: model.LevelHigh, Interests: []string{"technology", "port"}},
		{
			PreferredSectors:    []string{"Energy", "Healthcare"},
			InvestmentRange:     &model.InvestmentRange{Min: 1000, Max: 20000},
			MaxDuration:         48,
			PreferredLocations:  []string{"bali", "Surabaya"},
			Keywords:            []string{"teknologi", "rumah sakit"},
			SustainabilityFocus: true,
			TechnologyFocus:     true,
		},
	}

	for _, pref := range profiles {
		res, err := newTestRecommendService().Recommend(context.Background(), pref)
		require.NoError(t, err)
		require.LessOrEqual(t, len(res.Recommendations), 5)

		for i, r := range res.Recommendations {
			assert.GreaterOrEqual(t, r.Scores.RuleBasedScore, 0.0)
			assert.LessOrEqual(t, r.Scores.RuleBasedScore, 100.0)
			assert.GreaterOrEqual(t, r.Scores.ContentBasedScore, 0.0)
			assert.LessOrEqual(t, r.Scores.ContentBasedScore, 100.0)
			assert.InDelta(t, 0.6*r.Scores.RuleBasedScore+0.4*r.Scores.ContentBasedScore, r.Scores.FinalScore, 0.006)
			if i > 0 {
				prev := res.Recommendations[i-1]
				assert.GreaterOrEqual(t, prev.Scores.FinalScore, r.Scores.FinalScore)
				if prev.Scores.FinalScore == r.Scores.FinalScore {
					assert.Less(t, prev.ID, r.ID)
				}
			}
		}
	}
}

func TestRecommend_EmptyProfile(t *testing.T) {
	res, err := newTestRecommendService().Recommend(context.Background(), model.PreferenceProfile{})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, projectIDs(res.Recommendations))
	for _, r := range res.Recommendations {
		assert.Zero(t, r.Scores.FinalScore)
	}
	assert.Equal(t, []string{
		"Mendapat dukungan pemerintah yang tinggi",
		"Permintaan pasar yang tinggi",
	}, res.Recommendations[0].MatchReasons)
	assert.Empty(t, res.Recommendations[2].MatchReasons)
}

func TestRecommend_InvalidProfile(t *testing.T) {
	_, err := newTestRecommendService().Recommend(context.Background(), model.PreferenceProfile{RiskTolerance: "extreme"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = newTestRecommendService().Recommend(context.Background(), model.PreferenceProfile{ExpectedROI: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecommend_RepositoryError(t *testing.T) {
	cause := errors.New("catalog offline")
	_, err := NewRecommendService(failingProjectRepository{err: cause}).
		Recommend(context.Background(), model.PreferenceProfile{})
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestRecommend_FewerProjectsThanLimit(t *testing.T) {
	svc := NewRecommendService(repository.NewStaticProjectRepository(repository.DefaultProjects()[:2]))
	res, err := svc.Recommend(context.Background(), model.PreferenceProfile{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
}

func TestScoreProject_InvestmentBoundaryOverlap(t *testing.T) {
	toll := catalogProject(t, 1)
	got := scoreProject(toll, model.PreferenceProfile{
		InvestmentRange: &model.InvestmentRange{Min: 1000, Max: 5000},
	})
	assert.Equal(t, 20.0, got.Scores.RuleBasedScore)
	assert.Equal(t, 12.0, got.Scores.FinalScore)
}

func TestScoreProject_ContentCriteria(t *testing.T) {
	energy := catalogProject(t, 5)
	got := scoreProject(energy, model.PreferenceProfile{
		Interests:           []string{"energy"},
		Keywords:            []string{"solar", "nuklir"},
		PreferredComplexity: model.LevelHigh,
		SustainabilityFocus: true,
	})

	// tags 1/3*40 + keywords 1/2*30 + characteristics 1/2*30
	assert.Equal(t, 43.33, got.Scores.ContentBasedScore)
	assert.Zero(t, got.Scores.RuleBasedScore)
	assert.Equal(t, 17.33, got.Scores.FinalScore)
	assert.Equal(t, []string{"Relevan dengan minat Anda: renewable-energy"}, got.MatchReasons)
}

func TestScoreProject_RuleCriteria(t *testing.T) {
	hospital := catalogProject(t, 2)
	got := scoreProject(hospital, model.PreferenceProfile{
		PreferredSectors:       []string{"Healthcare"},
		InvestmentRange:        &model.InvestmentRange{Min: 0, Max: 2000},
		RiskTolerance:          model.LevelLow,
		MaxDuration:            24,
		PreferredLocations:     []string{"surabaya"},
		ExpectedROI:            8.5,
		GovernmentSupportLevel: model.LevelHigh,
		MarketDemandLevel:      model.LevelHigh,
	})
	assert.Equal(t, 100.0, got.Scores.RuleBasedScore)
	assert.Equal(t, 60.0, got.Scores.FinalScore)
}

func TestScoreProject_BlankEntriesIgnored(t *testing.T) {
	pref := model.PreferenceProfile{
		PreferredLocations: []string{"  "},
		Interests:          []string{""},
	}.Normalize()
	got := scoreProject(catalogProject(t, 1), pref)
	assert.Zero(t, got.Scores.FinalScore)
}

func TestMatchRisk(t *testing.T) {
	tests := []struct {
		tolerance, project model.Level
		want               riskMatch
	}{
		{model.LevelLow, model.LevelLow, riskFull},
		{model.LevelLow, model.LevelMedium, riskNone},
		{model.LevelLow, model.LevelHigh, riskNone},
		{model.LevelMedium, model.LevelLow, riskPartial},
		{model.LevelMedium, model.LevelMedium, riskFull},
		{model.LevelMedium, model.LevelHigh, riskPartial},
		{model.LevelHigh, model.LevelLow, riskNone},
		{model.LevelHigh, model.LevelMedium, riskPartial},
		{model.LevelHigh, model.LevelHigh, riskFull},
		{"", model.LevelHigh, riskNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchRisk(tt.tolerance, tt.project), "%s vs %s", tt.tolerance, tt.project)
	}
}

func TestTagMatchesInterest(t *testing.T) {
	assert.True(t, tagMatchesInterest("renewable-energy", []string{"Energy"}))
	assert.True(t, tagMatchesInterest("iot", []string{"IoT devices"}))
	assert.False(t, tagMatchesInterest("port", []string{"hospital"}))
}
