package model

type Scores struct {
	RuleBasedScore    float64 `json:"ruleBasedScore"`
	ContentBasedScore float64 `json:"contentBasedScore"`
	FinalScore        float64 `json:"finalScore"`
}

// ScoredProject is a catalog project ranked against one preference profile.
type ScoredProject struct {
	Project
	Scores       Scores   `json:"scores"`
	MatchReasons []string `json:"matchReasons"`
}
