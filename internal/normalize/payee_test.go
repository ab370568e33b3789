package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayee(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases and strips punctuation",
			input: "STARBUCKS #4521",
			want:  "starbucks 4521",
		},
		{
			name:  "collapses whitespace",
			input: "  Tim   Hortons\t#220 ",
			want:  "tim hortons 220",
		},
		{
			name:  "merchant with url and reference",
			input: "AMAZON.COM*1A2B3C",
			want:  "amazon com 1a2b3c",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "punctuation only",
			input: "***---***",
			want:  "",
		},
		{
			name:  "unicode letters survive",
			input: "Café Dépôt",
			want:  "café dépôt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Payee(tt.input))
		})
	}
}

func TestComparisonKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "drops numeric reference token",
			input: "AMAZON 4821",
			want:  "amazon",
		},
		{
			name:  "mixed alphanumeric token is kept",
			input: "AMAZON.COM*1A2B3C",
			want:  "amazon com 1a2b3c",
		},
		{
			name:  "all numeric collapses to empty",
			input: "12345 678",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComparisonKey(tt.input))
		})
	}
}

func TestComparisonKeyEquatesStoreNumbers(t *testing.T) {
	assert.Equal(t, ComparisonKey("AMAZON 4821"), ComparisonKey("AMAZON 9012"))
}

func TestTokens(t *testing.T) {
	got := Tokens("Transfer to Savings - Transfer")
	assert.Len(t, got, 3)
	assert.Contains(t, got, "transfer")
	assert.Contains(t, got, "to")
	assert.Contains(t, got, "savings")

	assert.Empty(t, Tokens(""))
}
