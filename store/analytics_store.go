package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Aashish23092/ghost-shift-audit/dto"
)

const (
	dayLayout      = "2006-01-02"
	dailyWindow    = 14
	recentVisitors = 20
)

// AnalyticsStore counts page visits and audit runs.
type AnalyticsStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db, now: time.Now}
}

func (s *AnalyticsStore) TrackVisit(ctx context.Context, ip, userAgent string) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visits (ip, user_agent, day, visited_at) VALUES (?, ?, ?, ?)`,
		ip, userAgent, now.Format(dayLayout), now.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to track visit: %w", err)
	}
	return nil
}

func (s *AnalyticsStore) TrackAudit(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO counters (name, value) VALUES ('audits_run', 1)
		 ON CONFLICT(name) DO UPDATE SET value = value + 1`,
	)
	if err != nil {
		return fmt.Errorf("failed to track audit: %w", err)
	}
	return nil
}

// Summary reports totals, the last 14 days of visits and the 20 most recent
// visitors with shortened IPs.
func (s *AnalyticsStore) Summary(ctx context.Context) (dto.AnalyticsSummary, error) {
	summary := dto.AnalyticsSummary{
		DailyVisits:    map[string]int{},
		RecentVisitors: []dto.RecentVisitor{},
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT ip) FROM visits`,
	).Scan(&summary.TotalVisits, &summary.UniqueVisitors)
	if err != nil {
		return summary, fmt.Errorf("failed to count visits: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE((SELECT value FROM counters WHERE name = 'audits_run'), 0)`,
	).Scan(&summary.AuditsRun)
	if err != nil {
		return summary, fmt.Errorf("failed to read audit counter: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT day, COUNT(*) FROM visits GROUP BY day ORDER BY day DESC LIMIT ?`,
		dailyWindow,
	)
	if err != nil {
		return summary, fmt.Errorf("failed to read daily visits: %w", err)
	}
	for rows.Next() {
		var (
			day   string
			count int
		)
		if err := rows.Scan(&day, &count); err != nil {
			rows.Close()
			return summary, fmt.Errorf("failed to scan daily visits: %w", err)
		}
		summary.DailyVisits[day] = count
	}
	rows.Close()
	summary.TodayVisits = summary.DailyVisits[s.now().Format(dayLayout)]

	rows, err = s.db.QueryContext(ctx,
		`SELECT ip, user_agent, visited_at FROM visits ORDER BY id DESC LIMIT ?`,
		recentVisitors,
	)
	if err != nil {
		return summary, fmt.Errorf("failed to read recent visitors: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			v         dto.RecentVisitor
			visitedAt int64
		)
		if err := rows.Scan(&v.IP, &v.UserAgent, &visitedAt); err != nil {
			return summary, fmt.Errorf("failed to scan visitor: %w", err)
		}
		v.IP = maskIP(v.IP)
		v.UserAgent = shortUserAgent(v.UserAgent)
		v.Time = time.Unix(0, visitedAt).UTC()
		summary.RecentVisitors = append(summary.RecentVisitors, v)
	}
	return summary, rows.Err()
}

func maskIP(ip string) string {
	if len(ip) <= 12 {
		return ip
	}
	return ip[:12] + "..."
}

func shortUserAgent(ua string) string {
	if ua == "" {
		return "Unknown"
	}
	if len(ua) > 50 {
		return ua[:50]
	}
	return ua
}
