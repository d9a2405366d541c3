package planner

import "github.com/phrazzld/bandpath/internal/domain"

// Params defines the tunable constants of phase planning.
type Params struct {
	// MaxStepPerPhase is the largest score gain one checkpoint may cover, in bands.
	MaxStepPerPhase float64
	// MinPhaseWeeks is the shortest phase the week split may produce.
	MinPhaseWeeks int
	// MaxGap is the largest total gain a plan may cover, in bands.
	MaxGap float64
	// FocusWeights bias the week split toward foundational areas.
	FocusWeights map[domain.FocusArea]int
}

// NewDefaultParams returns the production planning parameters.
func NewDefaultParams() *Params {
	return &Params{
		MaxStepPerPhase: 0.5,
		MinPhaseWeeks:   2,
		MaxGap:          domain.MaxScoreGap,
		FocusWeights: map[domain.FocusArea]int{
			domain.FocusGrammaticalAccuracy: 4,
			domain.FocusCoherenceCohesion:   3,
			domain.FocusLexicalResource:     3,
			domain.FocusTaskAchievement:     2,
			domain.FocusOverall:             2,
		},
	}
}

func (p *Params) weight(focus domain.FocusArea) int {
	if w, ok := p.FocusWeights[focus]; ok && w > 0 {
		return w
	}
	return 1
}
