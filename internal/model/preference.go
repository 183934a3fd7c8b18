package model

import (
	"fmt"
	"strings"
)

// PreferenceProfile is what an investor tells us they want. Every field is
// optional; a zero value means the criterion is not scored.
type PreferenceProfile struct {
	PreferredSectors       []string         `json:"preferredSectors,omitempty"`
	InvestmentRange        *InvestmentRange `json:"investmentRange,omitempty"`
	RiskTolerance          Level            `json:"riskTolerance,omitempty"`
	MaxDuration            int              `json:"maxDuration,omitempty"`
	PreferredLocations     []string         `json:"preferredLocations,omitempty"`
	ExpectedROI            float64          `json:"expectedROI,omitempty"`
	GovernmentSupportLevel Level            `json:"governmentSupportLevel,omitempty"`
	MarketDemandLevel      Level            `json:"marketDemandLevel,omitempty"`
	Interests              []string         `json:"interests,omitempty"`
	Keywords               []string         `json:"keywords,omitempty"`
	PreferredComplexity    Level            `json:"preferredComplexity,omitempty"`
	SustainabilityFocus    bool             `json:"sustainabilityFocus,omitempty"`
	TechnologyFocus        bool             `json:"technologyFocus,omitempty"`
}

// Normalize trims list entries and drops blanks, so an empty string never
// matches everything through substring checks.
func (p PreferenceProfile) Normalize() PreferenceProfile {
	p.PreferredSectors = compact(p.PreferredSectors)
	p.PreferredLocations = compact(p.PreferredLocations)
	p.Interests = compact(p.Interests)
	p.Keywords = compact(p.Keywords)
	return p
}

// Validate checks enum fields and numeric bounds.
func (p PreferenceProfile) Validate() error {
	levels := map[string]Level{
		"riskTolerance":          p.RiskTolerance,
		"governmentSupportLevel": p.GovernmentSupportLevel,
		"marketDemandLevel":      p.MarketDemandLevel,
		"preferredComplexity":    p.PreferredComplexity,
	}
	for field, level := range levels {
		if level != "" && !level.Valid() {
			return fmt.Errorf("%s must be one of low, medium, high", field)
		}
	}
	if p.MaxDuration < 0 {
		return fmt.Errorf("maxDuration must not be negative")
	}
	if p.ExpectedROI < 0 {
		return fmt.Errorf("expectedROI must not be negative")
	}
	return nil
}

func compact(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
