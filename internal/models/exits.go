package models

// ProfitTarget is one tier of the exit plan. Percent is measured against
// the strategy's max profit (defined risk) or entry premium (undefined).
type ProfitTarget struct {
	Percent      float64 `json:"percent"`       // gain that triggers the tier
	ClosePercent float64 `json:"close_percent"` // portion of the position to close
	Reasoning    string  `json:"reasoning"`
}

// TimeExits holds the DTE-driven exit thresholds.
type TimeExits struct {
	ExitDTE            int  `json:"exit_dte"`             // close remaining position at this DTE
	ThetaAccelDTE      int  `json:"theta_accel_dte"`      // earlier exit once decay accelerates
	AssignmentGuardDTE int  `json:"assignment_guard_dte"` // applies only when short legs exist
	HasShortLegs       bool `json:"has_short_legs"`
}

// GreekTrigger fires an exit review when a net greek crosses a threshold.
type GreekTrigger struct {
	Greek     string  `json:"greek"` // delta, gamma, theta, vega
	Threshold float64 `json:"threshold"`
	Action    string  `json:"action"`
}

// AdjustmentKind labels an adjustment playbook entry.
type AdjustmentKind string

const (
	AdjustDefensive AdjustmentKind = "defensive"
	AdjustOffensive AdjustmentKind = "offensive"
	AdjustRolling   AdjustmentKind = "rolling"
	AdjustMorphing  AdjustmentKind = "morphing"
)

// AdjustmentPlay is a static recommendation, not an automatic transition.
type AdjustmentPlay struct {
	Kind        AdjustmentKind `json:"kind"`
	Trigger     string         `json:"trigger"`
	Description string         `json:"description"`
}

// MonitoringPlan describes how the position should be watched after entry.
type MonitoringPlan struct {
	Frequency       string             `json:"frequency"`
	KeyMetrics      []string           `json:"key_metrics"`
	AlertThresholds map[string]float64 `json:"alert_thresholds"`
}

// ExitConditionSet is the full exit rulebook attached to exactly one
// StrategyInstance.
type ExitConditionSet struct {
	ProfitTargets   []ProfitTarget   `json:"profit_targets"` // primary tier first
	StopLossPercent float64          `json:"stop_loss_percent"`
	TimeExits       TimeExits        `json:"time_exits"`
	GreekTriggers   []GreekTrigger   `json:"greek_triggers"`
	Adjustments     []AdjustmentPlay `json:"adjustment_triggers"`
	Monitoring      MonitoringPlan   `json:"monitoring"`
}

// PrimaryTarget returns the first profit target tier, or a zero value
// when no targets were generated.
func (e *ExitConditionSet) PrimaryTarget() ProfitTarget {
	if len(e.ProfitTargets) == 0 {
		return ProfitTarget{}
	}
	return e.ProfitTargets[0]
}
