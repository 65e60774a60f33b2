package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Crypto", want: "crypto"},
		{name: "diacritics", input: "Crédit Agricole", want: "credit agricole"},
		{name: "punctuation runs", input: "S&P -- 500!!", want: "s p 500"},
		{name: "leading and trailing noise", input: "  ...Oil prices?  ", want: "oil prices"},
		{name: "empty", input: "", want: ""},
		{name: "only symbols", input: "%%% ---", want: ""},
		{name: "non latin letters kept", input: "Ünïcödé Жёлтый", want: "unicode желтыи"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"crypto", "2"}, Tokenize("  Crypto   2 "))
	assert.Equal(t, []string{"s", "p", "500"}, Tokenize("S&P 500"))
	assert.Empty(t, Tokenize("   "))
	assert.Empty(t, Tokenize(""))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("2"))
	assert.True(t, IsNumeric("2340"))
	assert.False(t, IsNumeric(""))
	assert.False(t, IsNumeric("2a"))
	assert.False(t, IsNumeric("-2"))
	assert.False(t, IsNumeric("٣"))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"featured", "trending"}, NormalizeTags([]string{"Featured", " trending "}))
	assert.Equal(t, []string{"featured"}, NormalizeTags([]string{"featured", "FEATURED", "", "  "}))
	assert.Equal(t, []string{"ab"}, NormalizeTags([]string{"a,b"}))
	assert.Empty(t, NormalizeTags(nil))
}
