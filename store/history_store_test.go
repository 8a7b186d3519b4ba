package store

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/ghost-shift-audit/dto"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestHistoryStoreAddAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore(setupTestDB(t), 10)

	id := "TRB-101"
	rec := dto.HistoryRecord{
		ID:          "audit-1",
		Timestamp:   time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		SourceFile:  "sheet.png",
		SheetRef:    "SITE-7/2026-03-01",
		WorkerCount: 1,
		IssueCount:  0,
		Logs:        []dto.PaperLogEntry{{LineNumber: 1, ExtractedName: "John Doe", ExtractedTimeIn: "07:58"}},
		Reports:     []dto.DiscrepancyReport{{WorkerID: &id, WorkerName: "John Doe", IssueType: dto.DiscrepancyClean, Confidence: 1}},
	}
	require.NoError(t, s.Add(ctx, rec))

	got, err := s.Get(ctx, "audit-1")
	require.NoError(t, err)
	assert.True(t, rec.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, "sheet.png", got.SourceFile)
	assert.Equal(t, "SITE-7/2026-03-01", got.SheetRef)
	require.Len(t, got.Reports, 1)
	assert.Equal(t, "TRB-101", *got.Reports[0].WorkerID)
	require.Len(t, got.Logs, 1)
	assert.Equal(t, "07:58", got.Logs[0].ExtractedTimeIn)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryStoreRetention(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore(setupTestDB(t), 3)

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Add(ctx, dto.HistoryRecord{
			ID:        fmt.Sprintf("audit-%d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "audit-5", list[0].ID)
	assert.Equal(t, "audit-4", list[1].ID)
	assert.Equal(t, "audit-3", list[2].ID)

	_, err = s.Get(ctx, "audit-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryStoreUpdateReports(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore(setupTestDB(t), 10)
	require.NoError(t, s.Add(ctx, dto.HistoryRecord{ID: "audit-1"}))

	reports := []dto.DiscrepancyReport{
		{WorkerName: "John Doe", IssueType: dto.DiscrepancyClean},
		{WorkerName: "Marcus Rivera", IssueType: dto.DiscrepancyGhostShift, HasIssue: true},
	}
	require.NoError(t, s.UpdateReports(ctx, "audit-1", reports))

	got, err := s.Get(ctx, "audit-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.WorkerCount)
	assert.Equal(t, 1, got.IssueCount)
	assert.Len(t, got.Reports, 2)

	assert.ErrorIs(t, s.UpdateReports(ctx, "missing", reports), ErrNotFound)
}

func TestHistoryStoreListEmpty(t *testing.T) {
	list, err := NewHistoryStore(setupTestDB(t), 10).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
