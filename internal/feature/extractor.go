// Package feature derives the normalized feature bundle the matchers and
// scorers consume. Extraction is pure: missing optional inputs degrade to
// defaults and nothing here can fail.
package feature

import (
	"math"
	"strings"
	"time"

	"github.com/Veraticus/ledger-reconcile/internal/model"
	"github.com/Veraticus/ledger-reconcile/internal/normalize"
)

// transferKeywords marks a transaction as a probable transfer when any of
// them appears in the normalized payee or memo.
var transferKeywords = []string{
	"transfer",
	"xfer",
	"trnsfr",
	"tfr",
	"e transfer",
	"etransfer",
	"wire",
	"move to",
	"sent to",
	"received from",
}

// roundDivisors are checked in order for round-amount detection.
var roundDivisors = []float64{100, 50, 25, 10}

const roundTolerance = 0.001

// Extract computes TransactionFeatures for one imported transaction.
func Extract(txn model.ImportedTransaction) model.TransactionFeatures {
	normalized := normalize.Payee(txn.Payee)

	memo := ""
	if txn.Memo != nil {
		memo = strings.ToLower(strings.TrimSpace(*txn.Memo))
	}

	accountType := model.DefaultAccountType
	if txn.AccountType != nil {
		accountType = *txn.AccountType
	}

	abs := math.Abs(txn.Amount)
	weekday := txn.Date.Weekday()

	return model.TransactionFeatures{
		NormalizedPayee: normalized,
		PayeeTokens:     normalize.Tokens(txn.Payee),
		PayeeLength:     len([]rune(normalized)),
		AbsAmount:       abs,
		Bucket:          bucketFor(abs),
		RoundAmount:     isRoundAmount(abs),
		DayOfWeek:       weekday,
		IsWeekend:       weekday == time.Saturday || weekday == time.Sunday,
		HourOfDay:       txn.Date.Hour(),
		Memo:            memo,
		MemoTokens:      normalize.Tokens(memo),
		TransferKeyword: hasTransferKeyword(normalized, memo),
		AccountType:     accountType,
	}
}

func bucketFor(abs float64) model.AmountBucket {
	switch {
	case abs < 10:
		return model.BucketMicro
	case abs < 50:
		return model.BucketSmall
	case abs < 200:
		return model.BucketMedium
	case abs <= 1000:
		return model.BucketLarge
	default:
		return model.BucketVeryLarge
	}
}

func isRoundAmount(abs float64) bool {
	if abs == 0 {
		return false
	}
	for _, d := range roundDivisors {
		rem := math.Mod(abs, d)
		if rem < roundTolerance || d-rem < roundTolerance {
			return true
		}
	}
	return false
}

func hasTransferKeyword(normalizedPayee, memo string) bool {
	normalizedMemo := normalize.Payee(memo)
	for _, kw := range transferKeywords {
		if strings.Contains(normalizedPayee, kw) || strings.Contains(normalizedMemo, kw) {
			return true
		}
	}
	return false
}
