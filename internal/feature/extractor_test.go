package feature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/ledger-reconcile/internal/model"
)

func strPtr(s string) *string { return &s }

func TestExtractBuckets(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   model.AmountBucket
	}{
		{name: "micro", amount: 4.99, want: model.BucketMicro},
		{name: "small lower bound", amount: 10, want: model.BucketSmall},
		{name: "small", amount: 42.17, want: model.BucketSmall},
		{name: "medium", amount: 120, want: model.BucketMedium},
		{name: "large", amount: 999.99, want: model.BucketLarge},
		{name: "large upper bound", amount: 1000, want: model.BucketLarge},
		{name: "very large", amount: 1000.01, want: model.BucketVeryLarge},
		{name: "negative amount uses magnitude", amount: -75, want: model.BucketMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Extract(model.ImportedTransaction{
				Payee:  "Test",
				Amount: tt.amount,
				Date:   time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
			})
			assert.Equal(t, tt.want, f.Bucket)
		})
	}
}

func TestExtractRoundAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   bool
	}{
		{name: "exact hundred", amount: 500, want: true},
		{name: "exact twenty five", amount: 75, want: true},
		{name: "exact ten", amount: 30, want: true},
		{name: "float drift tolerated", amount: 49.9999999, want: true},
		{name: "not round", amount: 42.17, want: false},
		{name: "zero is not round", amount: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Extract(model.ImportedTransaction{
				Payee:  "Test",
				Amount: tt.amount,
				Date:   time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
			})
			assert.Equal(t, tt.want, f.RoundAmount)
		})
	}
}

func TestExtractTemporalFeatures(t *testing.T) {
	// Saturday evening.
	f := Extract(model.ImportedTransaction{
		Payee:  "Cinema",
		Amount: 24,
		Date:   time.Date(2024, 3, 9, 20, 15, 0, 0, time.UTC),
	})

	assert.Equal(t, time.Saturday, f.DayOfWeek)
	assert.True(t, f.IsWeekend)
	assert.Equal(t, 20, f.HourOfDay)

	// Tuesday morning.
	f = Extract(model.ImportedTransaction{
		Payee:  "Coffee",
		Amount: 4,
		Date:   time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, time.Tuesday, f.DayOfWeek)
	assert.False(t, f.IsWeekend)
}

func TestExtractDefaults(t *testing.T) {
	f := Extract(model.ImportedTransaction{
		Payee:  "STARBUCKS #4521",
		Amount: -6.45,
		Date:   time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, "", f.Memo)
	assert.Empty(t, f.MemoTokens)
	assert.Equal(t, model.DefaultAccountType, f.AccountType)
	assert.Equal(t, "starbucks 4521", f.NormalizedPayee)
	assert.Equal(t, len([]rune("starbucks 4521")), f.PayeeLength)
	assert.InDelta(t, 6.45, f.AbsAmount, 1e-9)
}

func TestExtractTransferKeyword(t *testing.T) {
	tests := []struct {
		memo  *string
		name  string
		payee string
		want  bool
	}{
		{name: "keyword in payee", payee: "TRANSFER TO SAVINGS", want: true},
		{name: "keyword in memo", payee: "Online banking", memo: strPtr("monthly transfer"), want: true},
		{name: "e-transfer with punctuation", payee: "INTERAC E-TRANSFER", want: true},
		{name: "no keyword", payee: "STARBUCKS", memo: strPtr("latte"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Extract(model.ImportedTransaction{
				Payee:  tt.payee,
				Memo:   tt.memo,
				Amount: 100,
				Date:   time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC),
			})
			assert.Equal(t, tt.want, f.TransferKeyword)
		})
	}
}
