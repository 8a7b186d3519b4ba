package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSortRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"John Doe", "John Doe", 100},
		{"Doe John", "John Doe", 100},
		{"JOHN  doe", "john-DOE", 100},
		{"Jon Doe", "John Doe", 93},
		{"Jane Smyth", "Jane Smith", 90},
		{"abcde", "abcdx", 80},
		{"aaaaaaaaaaaaaaabbbb", "aaaaaaaaaaaaaaacccc", 79},
		{"Unknown Intruder", "John Doe", 42},
		{"", "John Doe", 0},
		{"---", "John Doe", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenSortRatio(tt.a, tt.b))
			assert.Equal(t, tt.want, TokenSortRatio(tt.b, tt.a))
		})
	}
}

func TestBestMatch(t *testing.T) {
	m := BestMatch("Doe John", []string{"Jane Smith", "John Doe", "Michael Johnson"})

	assert.True(t, m.Found())
	assert.Equal(t, "John Doe", m.Name)
	assert.Equal(t, 1, m.Index)
	assert.Equal(t, 100, m.Score)
	assert.False(t, m.Ambiguous())
}

func TestBestMatchEmptyCandidates(t *testing.T) {
	m := BestMatch("John Doe", nil)

	assert.False(t, m.Found())
	assert.Equal(t, "", m.Name)
	assert.Equal(t, 0, m.Score)
}

func TestBestMatchTieTakesFirst(t *testing.T) {
	m := BestMatch("Chris Lee", []string{"Chris Lea", "Chris Lei"})

	assert.Equal(t, "Chris Lea", m.Name)
	assert.Equal(t, 0, m.Index)
	assert.Equal(t, 89, m.Score)
	assert.Equal(t, 1, m.Ties)
	assert.True(t, m.Ambiguous())
}

func TestBestMatchRepeatedCandidateIsNotATie(t *testing.T) {
	m := BestMatch("John Doe", []string{"John Doe", "Jane Smith", "John Doe"})

	assert.Equal(t, 0, m.Index)
	assert.Equal(t, 100, m.Score)
	assert.False(t, m.Ambiguous())
}

func TestBestMatchLaterHigherScoreResetsTies(t *testing.T) {
	m := BestMatch("Chris Lee", []string{"Chris Lea", "Chris Lei", "Chris Lee"})

	assert.Equal(t, 2, m.Index)
	assert.Equal(t, 100, m.Score)
	assert.Equal(t, 0, m.Ties)
}
