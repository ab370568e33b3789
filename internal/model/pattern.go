package model

import (
	"fmt"
	"time"
)

// Reliability thresholds shared by the pattern types.
const (
	reliableConfidence = 0.8
	reliableMinUses    = 3

	// MaxPayeeVariants bounds the variant list; the oldest entry is evicted first.
	MaxPayeeVariants = 10
	// MaxCommonWords bounds the learned common-word list on transfer patterns.
	MaxCommonWords = 10
)

// CategoryPattern is a learned association between a payee signature and a category.
type CategoryPattern struct {
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	LastUsed      time.Time     `json:"last_used"`
	AmountMin     *float64      `json:"amount_min,omitempty"`
	AmountMax     *float64      `json:"amount_max,omitempty"`
	TypicalAmount *float64      `json:"typical_amount,omitempty"`
	CommonDay     *time.Weekday `json:"common_day,omitempty"`
	PayeePattern  string        `json:"payee_pattern"`
	Category      string        `json:"category"`
	MemoKeywords  []string      `json:"memo_keywords,omitempty"`
	ID            int           `json:"id"`
	UseCount      int           `json:"use_count"`
	Confidence    float64       `json:"confidence"`
}

// IsReliable reports whether the pattern has earned the reliability bonus.
func (p *CategoryPattern) IsReliable() bool {
	return p.Confidence >= reliableConfidence && p.UseCount >= reliableMinUses
}

// PayeePattern maps raw payee variants to a canonical display name.
type PayeePattern struct {
	LastUsed   time.Time `json:"last_used"`
	CreatedAt  time.Time `json:"created_at"`
	Canonical  string    `json:"canonical"`
	Variants   []string  `json:"variants"`
	ID         int       `json:"id"`
	UseCount   int       `json:"use_count"`
	Confidence float64   `json:"confidence"`
}

// TransferPattern accumulates learned behavior for one unordered account pair.
type TransferPattern struct {
	LastUsed          time.Time `json:"last_used"`
	CreatedAt         time.Time `json:"created_at"`
	AmountMin         *float64  `json:"amount_min,omitempty"`
	AmountMax         *float64  `json:"amount_max,omitempty"`
	FeeEstimate       *float64  `json:"fee_estimate,omitempty"`
	HoursMin          *float64  `json:"hours_min,omitempty"`
	HoursMax          *float64  `json:"hours_max,omitempty"`
	TypicalHours      *float64  `json:"typical_hours,omitempty"`
	CommonDayOfMonth  *int      `json:"common_day_of_month,omitempty"` // 0 = end-of-month bucket
	AccountPairKey    string    `json:"account_pair_key"`
	CommonWords       []string  `json:"common_words,omitempty"`
	ID                int       `json:"id"`
	FeeSamples        int       `json:"fee_samples"`
	HourSamples       int       `json:"hour_samples"`
	DayVotes          int       `json:"day_votes"`
	UseCount          int       `json:"use_count"`
	SuccessfulMatches int       `json:"successful_matches"`
	RejectedMatches   int       `json:"rejected_matches"`
}

// Confidence derives trust from the success-to-rejection ratio, clamped to [0,1].
func (p *TransferPattern) Confidence() float64 {
	total := p.SuccessfulMatches + p.RejectedMatches
	if total == 0 {
		return 0
	}
	return float64(p.SuccessfulMatches) / float64(total)
}

// IsReliable reports whether the pattern has enough samples to be trusted.
func (p *TransferPattern) IsReliable() bool {
	return p.Confidence() >= reliableConfidence && p.SuccessfulMatches >= reliableMinUses
}

// TransferPatternKey builds the symmetric key for an account pair; the key is
// identical regardless of argument order.
func TransferPatternKey(accountA, accountB string) string {
	if accountA > accountB {
		accountA, accountB = accountB, accountA
	}
	return fmt.Sprintf("%s-%s", accountA, accountB)
}
