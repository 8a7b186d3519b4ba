package dto

import "time"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// AuditResponse is returned by both the reconcile and scan endpoints.
type AuditResponse struct {
	AuditID        string              `json:"audit_id,omitempty"`
	SheetRef       string              `json:"sheet_ref,omitempty"`
	GeminiVerified bool                `json:"gemini_verified"`
	Shifts         []DigitalShift      `json:"shifts"`
	Logs           []PaperLogEntry     `json:"logs"`
	Reports        []DiscrepancyReport `json:"reports"`
	Summary        AuditSummary        `json:"summary"`
	ProcessedAt    string              `json:"processed_at"`
}

// HistoryRecord is one persisted audit run.
type HistoryRecord struct {
	ID          string              `json:"id"`
	Timestamp   time.Time           `json:"timestamp"`
	SourceFile  string              `json:"source_file,omitempty"`
	SheetRef    string              `json:"sheet_ref,omitempty"`
	WorkerCount int                 `json:"worker_count"`
	IssueCount  int                 `json:"issue_count"`
	Shifts      []DigitalShift      `json:"shifts,omitempty"`
	Logs        []PaperLogEntry     `json:"logs,omitempty"`
	Reports     []DiscrepancyReport `json:"reports,omitempty"`
}

// HistorySummary is the list view of a HistoryRecord.
type HistorySummary struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	SourceFile  string    `json:"source_file,omitempty"`
	WorkerCount int       `json:"worker_count"`
	IssueCount  int       `json:"issue_count"`
}

type RecentVisitor struct {
	IP        string    `json:"ip"`
	Time      time.Time `json:"time"`
	UserAgent string    `json:"user_agent"`
}

type AnalyticsSummary struct {
	TotalVisits    int             `json:"total_visits"`
	UniqueVisitors int             `json:"unique_visitors"`
	AuditsRun      int             `json:"audits_run"`
	TodayVisits    int             `json:"today_visits"`
	DailyVisits    map[string]int  `json:"daily_visits"`
	RecentVisitors []RecentVisitor `json:"recent_visitors"`
}

type RateLimitStatus struct {
	Remaining     int  `json:"remaining"`
	Limit         int  `json:"limit"`
	WindowSeconds int  `json:"window_seconds"`
	IsAllowed     bool `json:"is_allowed"`
}
