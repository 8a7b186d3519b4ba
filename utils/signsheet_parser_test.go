package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignSheet(t *testing.T) {
	text := `
		DAILY SIGN-IN SHEET
		Name | Time In | Time Out | Supervisor
		1. john doe - In: 07:58 - Out: 16:02 - Sup: SUP-AK [signed]
		2. Jane Smith - In: 7.55 - Out: ?? - Sup: ??
		Michael Johnson | 0815 | 15:30 | MK
		3. Unknown Intruder - In: ??
	`

	entries := ParseSignSheet(text)
	require.Len(t, entries, 4)

	first := entries[0]
	assert.Equal(t, 1, first.LineNumber)
	assert.Equal(t, "John Doe", first.ExtractedName)
	assert.Equal(t, "07:58", first.ExtractedTimeIn)
	require.NotNil(t, first.ExtractedTimeOut)
	assert.Equal(t, "16:02", *first.ExtractedTimeOut)
	require.NotNil(t, first.Supervisor)
	assert.Equal(t, "SUP-AK", *first.Supervisor)
	require.NotNil(t, first.SignaturePresent)
	assert.True(t, *first.SignaturePresent)
	assert.Equal(t, "1. john doe - In: 07:58 - Out: 16:02 - Sup: SUP-AK [signed]", first.RawText)

	second := entries[1]
	assert.Equal(t, 2, second.LineNumber)
	assert.Equal(t, "Jane Smith", second.ExtractedName)
	assert.Equal(t, "07:55", second.ExtractedTimeIn)
	assert.Nil(t, second.ExtractedTimeOut)
	assert.Nil(t, second.Supervisor)
	assert.Nil(t, second.SignaturePresent)

	third := entries[2]
	assert.Equal(t, 3, third.LineNumber)
	assert.Equal(t, "Michael Johnson", third.ExtractedName)
	assert.Equal(t, "08:15", third.ExtractedTimeIn)
	require.NotNil(t, third.ExtractedTimeOut)
	assert.Equal(t, "15:30", *third.ExtractedTimeOut)
	require.NotNil(t, third.Supervisor)
	assert.Equal(t, "MK", *third.Supervisor)

	fourth := entries[3]
	assert.Equal(t, 4, fourth.LineNumber)
	assert.Equal(t, "Unknown Intruder", fourth.ExtractedName)
	assert.Equal(t, "??", fourth.ExtractedTimeIn)
}

func TestParseSignSheetUnsigned(t *testing.T) {
	entries := ParseSignSheet("Alex Walker - In: 08:02 [unsigned]")

	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].SignaturePresent)
	assert.False(t, *entries[0].SignaturePresent)
}

func TestParseSignSheetNoRows(t *testing.T) {
	assert.Empty(t, ParseSignSheet("Sign-in sheet for the morning shift\nThank you"))
	assert.Empty(t, ParseSignSheet(""))
}

func TestNormalizeClock(t *testing.T) {
	assert.Equal(t, "07:58", NormalizeClock("7:58"))
	assert.Equal(t, "07:58", NormalizeClock("7.58"))
	assert.Equal(t, "07:58", NormalizeClock("7h58"))
	assert.Equal(t, "07:58", NormalizeClock("0758"))
	assert.Equal(t, "25:10", NormalizeClock(" 25:10 "))
	assert.Equal(t, "late", NormalizeClock("late"))
}
