package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/ghost-shift-audit/dto"
)

const testRoster = `
- id: TRB-101
  name: John Doe
  role: Packer
  scheduled_start: "08:00"
  scheduled_end: "16:00"
  gps_check_in: "07:55"
  gps_check_out: "16:05"
- id: TRB-103
  name: Michael Johnson
  role: Forklift
  scheduled_start: "08:00"
  scheduled_end: "16:00"
  gps_check_in: "08:20"
  gps_check_out: "15:30"
- id: TRB-GHOST
  name: Marcus Rivera
  role: Packer
  scheduled_start: "08:00"
  scheduled_end: "16:00"
  gps_check_in: "07:59"
  gps_check_out: "16:02"
`

const testPaperLog = `[
  {"line_number": 1, "raw_text": "1. John Doe - In: 07:58", "extracted_name": "John Doe", "extracted_time_in": "07:58"},
  {"line_number": 2, "raw_text": "2. Michael Jonson - In: 08:00", "extracted_name": "Michael Jonson", "extracted_time_in": "08:00"},
  {"line_number": 3, "raw_text": "3. Unknown Intruder - In: 08:05", "extracted_name": "Unknown Intruder", "extracted_time_in": "08:05"}
]`

func TestReconcileCommand(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "roster.yaml")
	logPath := filepath.Join(dir, "paper.json")
	require.NoError(t, os.WriteFile(rosterPath, []byte(testRoster), 0o644))
	require.NoError(t, os.WriteFile(logPath, []byte(testPaperLog), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"reconcile", "--config", "", "--roster", rosterPath, "--log", logPath})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())

	var result struct {
		Reports []dto.DiscrepancyReport `json:"reports"`
		Summary dto.AuditSummary        `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))

	got := make([]dto.DiscrepancyType, len(result.Reports))
	for i, r := range result.Reports {
		got[i] = r.IssueType
	}
	assert.Equal(t, []dto.DiscrepancyType{
		dto.DiscrepancyClean,
		dto.DiscrepancyTimeTheft,
		dto.DiscrepancyGhostShift,
		dto.DiscrepancyUnauthorized,
	}, got)
	assert.Equal(t, 3, result.Summary.IssueCount)
}

func TestReadRecordsErrors(t *testing.T) {
	_, err := readRecords[dto.PaperLogEntry](filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("line_number: [1"), 0o644))
	_, err = readRecords[dto.PaperLogEntry](bad)
	assert.Error(t, err)
}
