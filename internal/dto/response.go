package dto

import "github.com/gustav0-ri0s/sistema-de-calificaciones-VC/internal/grading"

// MutationResult is returned by every write. A write skipped by the period
// lock or the role gate has Applied=false and a Reason; it is not an error.
// Synced=false means the write was accepted but has not reached the store.
type MutationResult struct {
	Applied    bool                `json:"applied"`
	Reason     string              `json:"reason,omitempty"`
	Synced     bool                `json:"synced"`
	Completion *CompletionResponse `json:"completion,omitempty"`
}

// Skipped builds the silent no-op result.
func Skipped(reason string) *MutationResult {
	return &MutationResult{Applied: false, Reason: reason, Synced: true}
}

// TallyResponse one filled/expected pair
type TallyResponse struct {
	Filled     int `json:"filled"`
	Expected   int `json:"expected"`
	Percentage int `json:"percentage"`
}

// NewTallyResponse converts a tally.
func NewTallyResponse(t grading.Tally) TallyResponse {
	return TallyResponse{Filled: t.Filled, Expected: t.Expected, Percentage: t.Percentage()}
}

// CompletionResponse completion of one scope
type CompletionResponse struct {
	Scope           string                   `json:"scope"`
	ScopeID         string                   `json:"scope_id,omitempty"`
	PeriodID        int64                    `json:"period_id"`
	Filled          int                      `json:"filled"`
	Expected        int                      `json:"expected"`
	Percentage      int                      `json:"percentage"`
	AppreciationBar string                   `json:"appreciation_bar"`
	Categories      map[string]TallyResponse `json:"categories"`
}

// NewCompletionResponse flattens a breakdown.
func NewCompletionResponse(scope grading.ScopeKind, scopeID string, periodID int64, bar grading.AppreciationBar, b grading.Breakdown) *CompletionResponse {
	total := b.Total()
	cats := make(map[string]TallyResponse, len(b))
	for c, t := range b {
		cats[string(c)] = NewTallyResponse(t)
	}
	return &CompletionResponse{
		Scope:           string(scope),
		ScopeID:         scopeID,
		PeriodID:        periodID,
		Filled:          total.Filled,
		Expected:        total.Expected,
		Percentage:      total.Percentage(),
		AppreciationBar: string(bar),
		Categories:      cats,
	}
}
