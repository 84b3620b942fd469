package models

import "time"

// OutcomeStatus classifies the result of one symbol's analysis run.
type OutcomeStatus string

const (
	OutcomeOK            OutcomeStatus = "OK"
	OutcomeNoChain       OutcomeStatus = "NO_LIQUID_CHAIN"
	OutcomeNoConstructed OutcomeStatus = "NO_STRATEGIES_CONSTRUCTED"
	OutcomeAllFiltered   OutcomeStatus = "ALL_STRATEGIES_FILTERED"
	OutcomeFailed        OutcomeStatus = "FAILED"
)

// SymbolOutcome is the per-symbol result record. Callers always receive
// either a non-empty ranked list or a structured reason for emptiness.
type SymbolOutcome struct {
	Symbol      string              `json:"symbol"`
	Status      OutcomeStatus       `json:"status"`
	Reason      string              `json:"reason,omitempty"`
	Strategies  []*StrategyInstance `json:"strategies,omitempty"`
	Skips       map[string]string   `json:"construction_skips,omitempty"` // archetype -> reason
	FilteredOut int                 `json:"filtered_out"`
	AnalyzedAt  time.Time           `json:"analyzed_at"`
}

// Succeeded reports whether the run produced at least one ranked strategy.
func (o SymbolOutcome) Succeeded() bool {
	return o.Status == OutcomeOK && len(o.Strategies) > 0
}
