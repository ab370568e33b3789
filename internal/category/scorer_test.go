package category

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/ledger-reconcile/internal/feature"
	"github.com/Veraticus/ledger-reconcile/internal/model"
)

func floatPtr(f float64) *float64         { return &f }
func dayPtr(d time.Weekday) *time.Weekday { return &d }

func featuresFor(payee string, amount float64) model.TransactionFeatures {
	return feature.Extract(model.ImportedTransaction{
		Payee:  payee,
		Amount: amount,
		Date:   time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC), // a Tuesday
	})
}

func TestScoreAgainstPatternPayeeTiers(t *testing.T) {
	s := NewScorer(DefaultWeights())

	tests := []struct {
		name    string
		payee   string
		pattern string
		want    float64
	}{
		{name: "exact match", payee: "STARBUCKS", pattern: "starbucks", want: 1.0},
		{name: "containment", payee: "STARBUCKS COFFEE CO", pattern: "starbucks", want: 0.5},
		{name: "token overlap", payee: "TIM HORTONS DOWNTOWN", pattern: "tim hortons airport", want: 2.0 / 4.0 * 0.4},
		{name: "no relation", payee: "SHELL GAS", pattern: "starbucks", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ScoreAgainstPattern(featuresFor(tt.payee, 10), model.CategoryPattern{
				PayeePattern: tt.pattern,
				Category:     "Coffee",
			})
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScoreAgainstPatternBonuses(t *testing.T) {
	s := NewScorer(DefaultWeights())

	pattern := model.CategoryPattern{
		PayeePattern:  "starbucks",
		Category:      "Coffee",
		Confidence:    1.0,
		UseCount:      5,
		AmountMin:     floatPtr(3),
		AmountMax:     floatPtr(10),
		TypicalAmount: floatPtr(6.50),
		CommonDay:     dayPtr(time.Tuesday),
	}

	got := s.ScoreAgainstPattern(featuresFor("STARBUCKS", 6.45), pattern)

	// exact + confidence·learned + reliable + amount range + typical + day.
	want := 1.0 + 1.0*0.3 + 0.15 + 0.1 + 0.1 + 0.05
	assert.InDelta(t, want, got, 1e-9)
}

func TestScoreAgainstPatternTypicalAmountWindow(t *testing.T) {
	s := NewScorer(DefaultWeights())
	base := model.CategoryPattern{PayeePattern: "netflix", TypicalAmount: floatPtr(20)}

	within := s.ScoreAgainstPattern(featuresFor("NETFLIX", 21.99), base)
	outside := s.ScoreAgainstPattern(featuresFor("NETFLIX", 22.01), base)
	assert.Greater(t, within, outside)
}

func TestScoreAgainstPatternMemoKeyword(t *testing.T) {
	s := NewScorer(DefaultWeights())

	memo := "monthly gym membership"
	f := feature.Extract(model.ImportedTransaction{
		Payee:  "GOODLIFE",
		Memo:   &memo,
		Amount: 45,
		Date:   time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
	})

	with := s.ScoreAgainstPattern(f, model.CategoryPattern{
		PayeePattern: "goodlife",
		MemoKeywords: []string{"membership"},
	})
	without := s.ScoreAgainstPattern(f, model.CategoryPattern{
		PayeePattern: "goodlife",
	})
	assert.InDelta(t, 0.1, with-without, 1e-9)
}

func TestScoreAgainstPatternTransferPenalty(t *testing.T) {
	s := NewScorer(DefaultWeights())

	f := featuresFor("TRANSFER TO SAVINGS", 500)
	require.True(t, f.TransferKeyword)

	got := s.ScoreAgainstPattern(f, model.CategoryPattern{
		PayeePattern: "transfer to savings",
		Category:     "Misc",
		Confidence:   0.5,
	})

	// exact (1.0) + 0.5·0.3 − 1.0, still non-negative.
	assert.InDelta(t, 0.15, got, 1e-9)

	// A weak pattern is floored at zero rather than going negative.
	got = s.ScoreAgainstPattern(f, model.CategoryPattern{
		PayeePattern: "groceries",
		Category:     "Food",
	})
	assert.Zero(t, got)
}

func TestBestMatch(t *testing.T) {
	s := NewScorer(DefaultWeights())

	patterns := []model.CategoryPattern{
		{ID: 1, PayeePattern: "starbucks", Category: "Coffee", Confidence: 0.9},
		{ID: 2, PayeePattern: "starbucks coffee", Category: "Dining", Confidence: 0.2},
		{ID: 3, PayeePattern: "shell", Category: "Gas"},
	}

	best, ok := s.BestMatch(featuresFor("STARBUCKS", 6.45), patterns)
	require.True(t, ok)
	assert.Equal(t, "Coffee", best.Category)
	assert.Equal(t, 1, best.PatternID)
}

func TestBestMatchTiesKeepFirst(t *testing.T) {
	s := NewScorer(DefaultWeights())

	patterns := []model.CategoryPattern{
		{ID: 1, PayeePattern: "starbucks", Category: "Coffee"},
		{ID: 2, PayeePattern: "starbucks", Category: "Dining"},
	}

	best, ok := s.BestMatch(featuresFor("STARBUCKS", 6.45), patterns)
	require.True(t, ok)
	assert.Equal(t, 1, best.PatternID)
}

func TestBestMatchNoSuggestionOnZeroScore(t *testing.T) {
	s := NewScorer(DefaultWeights())

	// No pattern relates to this merchant at all.
	_, ok := s.BestMatch(featuresFor("AMAZON.COM*1A2B3C", 42.17), []model.CategoryPattern{
		{ID: 1, PayeePattern: "starbucks", Category: "Coffee"},
	})
	assert.False(t, ok)

	_, ok = s.BestMatch(featuresFor("AMAZON.COM*1A2B3C", 42.17), nil)
	assert.False(t, ok)
}
