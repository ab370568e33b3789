package model

// DuplicateResult is the verdict for one (imported, existing) pair comparison.
type DuplicateResult struct {
	Reason      string `json:"reason,omitempty"`
	ExistingID  string `json:"existing_id,omitempty"`
	IsDuplicate bool   `json:"is_duplicate"`
}

// TransferSuggestion proposes that two imported transactions form one transfer.
type TransferSuggestion struct {
	OutflowID string  `json:"outflow_id"`
	InflowID  string  `json:"inflow_id"`
	Score     float64 `json:"score"`
	DaysApart int     `json:"days_apart"`
}

// PairKey returns the unordered identity of the suggestion, so a pair
// discovered from either side deduplicates to the same key.
func (s TransferSuggestion) PairKey() string {
	return TransferPatternKey(s.OutflowID, s.InflowID)
}

// CategorySuggestion is one ranked category proposal for a transaction.
type CategorySuggestion struct {
	Category  string  `json:"category"`
	Score     float64 `json:"score"`
	PatternID int     `json:"pattern_id"`
}

// PayeeSuggestion is one ranked canonical-name proposal for a raw payee.
type PayeeSuggestion struct {
	Canonical  string  `json:"canonical"`
	Confidence float64 `json:"confidence"`
}
