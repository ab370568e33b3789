package model

import "time"

// AmountBucket is a coarse magnitude range used as a matching feature.
type AmountBucket string

// Amount bucket constants. Thresholds are fixed, not configurable.
const (
	BucketMicro     AmountBucket = "micro"      // < 10
	BucketSmall     AmountBucket = "small"      // 10-50
	BucketMedium    AmountBucket = "medium"     // 50-200
	BucketLarge     AmountBucket = "large"      // 200-1000
	BucketVeryLarge AmountBucket = "very-large" // > 1000
)

// TransactionFeatures is the normalized, comparable feature bundle derived
// from one transaction. It is recomputed on demand and never persisted.
type TransactionFeatures struct {
	PayeeTokens     map[string]struct{}
	MemoTokens      map[string]struct{}
	NormalizedPayee string
	Memo            string
	Bucket          AmountBucket
	AccountType     AccountType
	PayeeLength     int
	AbsAmount       float64
	HourOfDay       int
	DayOfWeek       time.Weekday
	RoundAmount     bool
	IsWeekend       bool
	TransferKeyword bool
}
