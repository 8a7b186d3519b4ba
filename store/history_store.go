package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Aashish23092/ghost-shift-audit/dto"
)

// HistoryStore persists audit runs, keeping only the most recent ones.
type HistoryStore struct {
	db        *sql.DB
	retention int
}

func NewHistoryStore(db *sql.DB, retention int) *HistoryStore {
	if retention < 1 {
		retention = 10
	}
	return &HistoryStore{db: db, retention: retention}
}

type auditPayload struct {
	Shifts  []dto.DigitalShift      `json:"shifts"`
	Logs    []dto.PaperLogEntry     `json:"logs"`
	Reports []dto.DiscrepancyReport `json:"reports"`
}

// Add stores rec and prunes records beyond the retention limit.
func (s *HistoryStore) Add(ctx context.Context, rec dto.HistoryRecord) error {
	payload, err := json.Marshal(auditPayload{Shifts: rec.Shifts, Logs: rec.Logs, Reports: rec.Reports})
	if err != nil {
		return fmt.Errorf("failed to encode audit %s: %w", rec.ID, err)
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO audits (id, created_at, source_file, sheet_ref, worker_count, issue_count, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.UnixNano(), rec.SourceFile, rec.SheetRef, rec.WorkerCount, rec.IssueCount, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit %s: %w", rec.ID, err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM audits WHERE id NOT IN (
			SELECT id FROM audits ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`,
		s.retention,
	)
	if err != nil {
		return fmt.Errorf("failed to prune audit history: %w", err)
	}

	return tx.Commit()
}

// UpdateReports replaces the reports of an existing audit and recomputes
// its counts.
func (s *HistoryStore) UpdateReports(ctx context.Context, id string, reports []dto.DiscrepancyReport) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	summary := dto.Summarize(reports)
	payload, err := json.Marshal(auditPayload{Shifts: rec.Shifts, Logs: rec.Logs, Reports: reports})
	if err != nil {
		return fmt.Errorf("failed to encode audit %s: %w", id, err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE audits SET worker_count = ?, issue_count = ?, payload = ? WHERE id = ?`,
		summary.WorkerCount, summary.IssueCount, string(payload), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update audit %s: %w", id, err)
	}
	return nil
}

// List returns audit summaries, newest first.
func (s *HistoryStore) List(ctx context.Context) ([]dto.HistorySummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source_file, worker_count, issue_count
		 FROM audits ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	defer rows.Close()

	summaries := []dto.HistorySummary{}
	for rows.Next() {
		var (
			h         dto.HistorySummary
			createdAt int64
		)
		if err := rows.Scan(&h.ID, &createdAt, &h.SourceFile, &h.WorkerCount, &h.IssueCount); err != nil {
			return nil, fmt.Errorf("failed to scan audit: %w", err)
		}
		h.Timestamp = time.Unix(0, createdAt).UTC()
		summaries = append(summaries, h)
	}
	return summaries, rows.Err()
}

func (s *HistoryStore) Get(ctx context.Context, id string) (*dto.HistoryRecord, error) {
	var (
		rec       dto.HistoryRecord
		createdAt int64
		payload   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source_file, sheet_ref, worker_count, issue_count, payload
		 FROM audits WHERE id = ?`,
		id,
	).Scan(&rec.ID, &createdAt, &rec.SourceFile, &rec.SheetRef, &rec.WorkerCount, &rec.IssueCount, &payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("audit %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit %s: %w", id, err)
	}

	var p auditPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("failed to decode audit %s: %w", id, err)
	}
	rec.Timestamp = time.Unix(0, createdAt).UTC()
	rec.Shifts, rec.Logs, rec.Reports = p.Shifts, p.Logs, p.Reports
	return &rec, nil
}
