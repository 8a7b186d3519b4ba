package dto

type ShiftStatus string

const (
	ShiftScheduled ShiftStatus = "SCHEDULED"
	ShiftCompleted ShiftStatus = "COMPLETED"
	ShiftNoShow    ShiftStatus = "NO_SHOW"
)

// Worker is reference data about a person who can be rostered.
// TrustScore is a prior reliability in [0,1] and is informational only.
type Worker struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Role       string  `json:"role" yaml:"role"`
	TrustScore float64 `json:"trust_score" yaml:"trust_score"`
}

// DigitalShift is the scheduling system's claim that a worker was rostered
// and, per GPS, present. Clock fields are "HH:MM" wall-clock values.
type DigitalShift struct {
	ShiftID        string      `json:"shift_id" yaml:"shift_id"`
	WorkerID       string      `json:"worker_id" yaml:"worker_id"`
	WorkerName     string      `json:"worker_name" yaml:"worker_name"`
	ScheduledStart string      `json:"scheduled_start" yaml:"scheduled_start"`
	ScheduledEnd   string      `json:"scheduled_end" yaml:"scheduled_end"`
	GPSCheckIn     *string     `json:"gps_check_in" yaml:"gps_check_in"`
	GPSCheckOut    *string     `json:"gps_check_out" yaml:"gps_check_out"`
	Status         ShiftStatus `json:"status" yaml:"status"`
	Supervisor     string      `json:"supervisor,omitempty" yaml:"supervisor,omitempty"`
}

// PaperLogEntry is one transcribed row of the physical sign-in sheet.
// LineNumber is the 1-based row position and is unique per sheet.
type PaperLogEntry struct {
	LineNumber       int     `json:"line_number" yaml:"line_number"`
	RawText          string  `json:"raw_text" yaml:"raw_text"`
	ExtractedName    string  `json:"extracted_name" yaml:"extracted_name"`
	ExtractedTimeIn  string  `json:"extracted_time_in" yaml:"extracted_time_in"`
	ExtractedTimeOut *string `json:"extracted_time_out" yaml:"extracted_time_out"`
	Supervisor       *string `json:"supervisor" yaml:"supervisor"`
	SignaturePresent *bool   `json:"signature_present" yaml:"signature_present"`
}

type DiscrepancyType string

const (
	DiscrepancyGhostShift        DiscrepancyType = "GHOST_SHIFT"
	DiscrepancyTimeTheft         DiscrepancyType = "TIME_THEFT"
	DiscrepancyUnauthorized      DiscrepancyType = "UNAUTHORIZED"
	DiscrepancyLateArrival       DiscrepancyType = "LATE_ARRIVAL"
	DiscrepancyEarlyDeparture    DiscrepancyType = "EARLY_DEPARTURE"
	DiscrepancyMissingSupervisor DiscrepancyType = "MISSING_SUPERVISOR"
	DiscrepancyClean             DiscrepancyType = "CLEAN"
)

// Report flags
const (
	FlagUnverifiableTime = "UNVERIFIABLE_TIME"
	FlagAmbiguousMatch   = "AMBIGUOUS_MATCH"
	FlagGPSMissing       = "GPS_MISSING"
	FlagSharedPaperLine  = "SHARED_PAPER_LINE"
	FlagNoSignature      = "NO_SIGNATURE"
)

type FieldComparison struct {
	FieldName     string `json:"field_name"`
	PaperValue    string `json:"paper_value"`
	DatabaseValue string `json:"database_value"`
	Matches       bool   `json:"matches"`
}

// DiscrepancyReport is the verdict for one roster worker or one unmatched
// paper entry. WorkerID is nil for entries with no roster identity.
type DiscrepancyReport struct {
	WorkerID         *string           `json:"worker_id"`
	WorkerName       string            `json:"worker_name"`
	HasIssue         bool              `json:"has_issue"`
	IssueType        DiscrepancyType   `json:"issue_type"`
	Confidence       float64           `json:"confidence"`
	Reasoning        string            `json:"reasoning"`
	Evidence         []string          `json:"evidence"`
	MatchedFields    []string          `json:"matched_fields"`
	MismatchedFields []FieldComparison `json:"mismatched_fields"`
	Flags            []string          `json:"flags"`
	PaperData        map[string]string `json:"paper_data"`
	DatabaseData     map[string]string `json:"database_data"`
}

// AuditSummary counts reports per discrepancy type.
type AuditSummary struct {
	WorkerCount int                     `json:"worker_count"`
	IssueCount  int                     `json:"issue_count"`
	ByType      map[DiscrepancyType]int `json:"by_type"`
}

// Summarize builds an AuditSummary over reports.
func Summarize(reports []DiscrepancyReport) AuditSummary {
	summary := AuditSummary{
		WorkerCount: len(reports),
		ByType:      make(map[DiscrepancyType]int),
	}
	for _, r := range reports {
		summary.ByType[r.IssueType]++
		if r.HasIssue {
			summary.IssueCount++
		}
	}
	return summary
}
