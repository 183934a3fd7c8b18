package app

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"kpbu-assistant/internal/model"
)

// Rule-based weights. The maximum stays 100 whatever the profile supplies.
const (
	weightSector      = 25.0
	weightInvestment  = 20.0
	weightRiskFull    = 15.0
	weightRiskPartial = 10.0
	weightDuration    = 10.0
	weightLocation    = 10.0
	weightROI         = 10.0
	weightGovernment  = 5.0
	weightMarket      = 5.0
	ruleMaxScore      = 100.0
)

// Content-based weights.
const (
	weightTags            = 40.0
	weightKeywords        = 30.0
	weightCharacteristics = 30.0
	contentMaxScore       = 100.0
)

const (
	ruleBlendWeight        = 0.6
	contentBlendWeight     = 0.4
	defaultRecommendations = 5
)

var (
	sustainabilityTags = []string{"renewable-energy", "water-treatment", "smart-city"}
	technologyTags     = []string{"technology", "smart-city", "iot"}
)

type riskMatch int

const (
	riskNone riskMatch = iota
	riskPartial
	riskFull
)

// criteriaEvaluation records which criteria one project satisfies for one
// profile. Scores and match reasons are both derived from it.
type criteriaEvaluation struct {
	sector     bool
	investment bool
	risk       riskMatch
	duration   bool
	location   bool
	roi        bool
	government bool
	market     bool

	commonTags       []string
	tagDenominator   int
	matchedKeywords  int
	keywordCount     int
	characteristics  int
	characteristicOK int

	highGovernment bool
	highMarket     bool
}

func evaluate(p model.Project, pref model.PreferenceProfile) criteriaEvaluation {
	var ev criteriaEvaluation

	ev.sector = slices.Contains(pref.PreferredSectors, p.Sector)
	if pref.InvestmentRange != nil {
		ev.investment = p.InvestmentRange.Overlaps(*pref.InvestmentRange)
	}
	ev.risk = matchRisk(pref.RiskTolerance, p.RiskLevel)
	ev.duration = pref.MaxDuration > 0 && p.Duration <= pref.MaxDuration
	ev.location = anyContainsFold(p.Location, pref.PreferredLocations)
	ev.roi = pref.ExpectedROI > 0 && p.EstimatedROI >= pref.ExpectedROI
	ev.government = pref.GovernmentSupportLevel != "" && pref.GovernmentSupportLevel == p.GovernmentSupport
	ev.market = pref.MarketDemandLevel != "" && pref.MarketDemandLevel == p.MarketDemand

	if len(pref.Interests) > 0 {
		for _, tag := range p.Tags {
			if tagMatchesInterest(tag, pref.Interests) {
				ev.commonTags = append(ev.commonTags, tag)
			}
		}
		ev.tagDenominator = max(len(pref.Interests), len(p.Tags))
	}

	ev.keywordCount = len(pref.Keywords)
	description := strings.ToLower(p.Description)
	for _, kw := range pref.Keywords {
		if strings.Contains(description, strings.ToLower(kw)) {
			ev.matchedKeywords++
		}
	}

	if pref.PreferredComplexity != "" {
		ev.characteristics++
		if pref.PreferredComplexity == p.RegulatoryComplexity {
			ev.characteristicOK++
		}
	}
	if pref.SustainabilityFocus {
		ev.characteristics++
		if hasAnyTag(p.Tags, sustainabilityTags) {
			ev.characteristicOK++
		}
	}
	if pref.TechnologyFocus {
		ev.characteristics++
		if hasAnyTag(p.Tags, technologyTags) {
			ev.characteristicOK++
		}
	}

	ev.highGovernment = p.GovernmentSupport == model.LevelHigh
	ev.highMarket = p.MarketDemand == model.LevelHigh
	return ev
}

func matchRisk(tolerance, project model.Level) riskMatch {
	switch {
	case tolerance == "":
		return riskNone
	case tolerance == project:
		return riskFull
	case tolerance == model.LevelMedium && (project == model.LevelLow || project == model.LevelHigh):
		return riskPartial
	case tolerance == model.LevelHigh && project == model.LevelMedium:
		return riskPartial
	}
	return riskNone
}

func (ev criteriaEvaluation) ruleScore() float64 {
	var score float64
	if ev.sector {
		score += weightSector
	}
	if ev.investment {
		score += weightInvestment
	}
	switch ev.risk {
	case riskFull:
		score += weightRiskFull
	case riskPartial:
		score += weightRiskPartial
	}
	if ev.duration {
		score += weightDuration
	}
	if ev.location {
		score += weightLocation
	}
	if ev.roi {
		score += weightROI
	}
	if ev.government {
		score += weightGovernment
	}
	if ev.market {
		score += weightMarket
	}
	return score / ruleMaxScore * 100
}

func (ev criteriaEvaluation) contentScore() float64 {
	var score float64
	if ev.tagDenominator > 0 {
		score += float64(len(ev.commonTags)) / float64(ev.tagDenominator) * weightTags
	}
	if ev.keywordCount > 0 {
		score += float64(ev.matchedKeywords) / float64(ev.keywordCount) * weightKeywords
	}
	if ev.characteristics > 0 {
		score += float64(ev.characteristicOK) / float64(ev.characteristics) * weightCharacteristics
	}
	return score / contentMaxScore * 100
}

func (ev criteriaEvaluation) reasons(p model.Project) []string {
	reasons := make([]string, 0, 6)
	if ev.sector {
		reasons = append(reasons, fmt.Sprintf("Sektor %s sesuai dengan preferensi Anda", p.Sector))
	}
	if ev.risk == riskFull {
		reasons = append(reasons, fmt.Sprintf("Tingkat risiko %s cocok dengan toleransi risiko Anda", p.RiskLevel))
	}
	if ev.roi {
		reasons = append(reasons, fmt.Sprintf("ROI estimasi %s%% memenuhi ekspektasi Anda",
			strconv.FormatFloat(p.EstimatedROI, 'f', -1, 64)))
	}
	if len(ev.commonTags) > 0 {
		reasons = append(reasons, "Relevan dengan minat Anda: "+strings.Join(ev.commonTags, ", "))
	}
	if ev.highGovernment {
		reasons = append(reasons, "Mendapat dukungan pemerintah yang tinggi")
	}
	if ev.highMarket {
		reasons = append(reasons, "Permintaan pasar yang tinggi")
	}
	return reasons
}

func scoreProject(p model.Project, pref model.PreferenceProfile) model.ScoredProject {
	ev := evaluate(p, pref)
	rule := round2(ev.ruleScore())
	content := round2(ev.contentScore())
	return model.ScoredProject{
		Project: p,
		Scores: model.Scores{
			RuleBasedScore:    rule,
			ContentBasedScore: content,
			FinalScore:        round2(ruleBlendWeight*rule + contentBlendWeight*content),
		},
		MatchReasons: ev.reasons(p),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// tagMatchesInterest is a case-insensitive substring match in either direction.
func tagMatchesInterest(tag string, interests []string) bool {
	t := strings.ToLower(tag)
	for _, interest := range interests {
		i := strings.ToLower(interest)
		if strings.Contains(i, t) || strings.Contains(t, i) {
			return true
		}
	}
	return false
}

func anyContainsFold(haystack string, needles []string) bool {
	h := strings.ToLower(haystack)
	for _, n := range needles {
		if strings.Contains(h, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func hasAnyTag(tags, wanted []string) bool {
	for _, t := range tags {
		if slices.Contains(wanted, t) {
			return true
		}
	}
	return false
}
