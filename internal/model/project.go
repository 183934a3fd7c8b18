package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Level is the shared low/medium/high scale used for risk, government support,
// market demand and regulatory complexity.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// InvestmentRange is an inclusive [Min, Max] range in billions of rupiah.
// On the wire it is the string "min-max".
type InvestmentRange struct {
	Min int64
	Max int64
}

func ParseInvestmentRange(raw string) (InvestmentRange, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(raw), "-")
	if !ok {
		return InvestmentRange{}, fmt.Errorf("investment range %q: want min-max", raw)
	}
	minV, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
	if err != nil {
		return InvestmentRange{}, fmt.Errorf("investment range %q: bad min: %w", raw, err)
	}
	maxV, err := strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
	if err != nil {
		return InvestmentRange{}, fmt.Errorf("investment range %q: bad max: %w", raw, err)
	}
	if minV > maxV {
		return InvestmentRange{}, fmt.Errorf("investment range %q: min exceeds max", raw)
	}
	return InvestmentRange{Min: minV, Max: maxV}, nil
}

// Overlaps is boundary-inclusive: 1000-5000 overlaps 5000-10000.
func (r InvestmentRange) Overlaps(other InvestmentRange) bool {
	return r.Min <= other.Max && r.Max >= other.Min
}

func (r InvestmentRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

func (r InvestmentRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *InvestmentRange) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("investment range must be a string: %w", err)
	}
	parsed, err := ParseInvestmentRange(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Project is one entry of the KPBU catalog. Values are immutable once loaded.
type Project struct {
	ID                   int             `json:"id"`
	Name                 string          `json:"name"`
	Sector               string          `json:"sector"`
	InvestmentRange      InvestmentRange `json:"investmentRange"`
	RiskLevel            Level           `json:"riskLevel"`
	Duration             int             `json:"duration"`
	Location             string          `json:"location"`
	Description          string          `json:"description"`
	Tags                 []string        `json:"tags"`
	EstimatedROI         float64         `json:"estimatedROI"`
	GovernmentSupport    Level           `json:"governmentSupport"`
	MarketDemand         Level           `json:"marketDemand"`
	RegulatoryComplexity Level           `json:"regulatoryComplexity"`
}
