package adjust

// Params defines the thresholds and cooldowns of plan evaluation.
type Params struct {
	TrendWindowDays    int
	WeakAreaWindowDays int
	// MinTrendConfidence is the least trend confidence that may move the target date.
	MinTrendConfidence float64
	// WeakAreaCooldownDays blocks a second remediation inside this many days.
	WeakAreaCooldownDays int
	// TrendCooldownDays blocks a second faster/slower replan inside this many days.
	TrendCooldownDays int
	// SevereDeficit is the weak-area deficit above which remediation lasts two weeks.
	SevereDeficit float64
	// MinDaysLeftForPullForward is how long the current phase must still run before a pull-forward.
	MinDaysLeftForPullForward int
}

// NewDefaultParams returns the default evaluation parameters.
func NewDefaultParams() *Params {
	return &Params{
		TrendWindowDays:           7,
		WeakAreaWindowDays:        14,
		MinTrendConfidence:        0.75,
		WeakAreaCooldownDays:      14,
		TrendCooldownDays:         7,
		SevereDeficit:             1.0,
		MinDaysLeftForPullForward: 7,
	}
}
