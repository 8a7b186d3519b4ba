package dto

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
)

var ErrInvalidRequest = errors.New("invalid request")

// ReconcileRequest carries already-structured records for an audit run.
type ReconcileRequest struct {
	Shifts  []DigitalShift  `json:"shifts"`
	Logs    []PaperLogEntry `json:"logs"`
	AuditID string          `json:"audit_id,omitempty"`
}

// Validate enforces the input contract: unique shift ids and unique,
// positive paper line numbers.
func (r *ReconcileRequest) Validate() error {
	seenShifts := make(map[string]bool, len(r.Shifts))
	for i, s := range r.Shifts {
		if strings.TrimSpace(s.WorkerID) == "" {
			return fmt.Errorf("%w: shifts[%d] has no worker_id", ErrInvalidRequest, i)
		}
		if s.ShiftID == "" {
			continue
		}
		if seenShifts[s.ShiftID] {
			return fmt.Errorf("%w: duplicate shift_id %s", ErrInvalidRequest, s.ShiftID)
		}
		seenShifts[s.ShiftID] = true
	}

	seenLines := make(map[int]bool, len(r.Logs))
	for _, l := range r.Logs {
		if l.LineNumber < 1 {
			return fmt.Errorf("%w: line_number must be 1-based, got %d", ErrInvalidRequest, l.LineNumber)
		}
		if seenLines[l.LineNumber] {
			return fmt.Errorf("%w: duplicate line_number %d", ErrInvalidRequest, l.LineNumber)
		}
		seenLines[l.LineNumber] = true
	}
	return nil
}

// ScanRequest is a sign-in sheet upload.
type ScanRequest struct {
	File *multipart.FileHeader
}

// Validate validates the uploaded sheet
func (r *ScanRequest) Validate() error {
	if r.File == nil {
		return fmt.Errorf("%w: file is required", ErrInvalidRequest)
	}

	filename := strings.ToLower(r.File.Filename)
	for _, ext := range []string{".pdf", ".png", ".jpg", ".jpeg"} {
		if strings.HasSuffix(filename, ext) {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid file type. Supported: PDF, PNG, JPG", ErrInvalidRequest)
}

// RosterEntry is a roster record as managed through the roster API.
type RosterEntry struct {
	ID             string  `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Role           string  `json:"role" yaml:"role"`
	TrustScore     float64 `json:"trust_score" yaml:"trust_score"`
	ScheduledStart string  `json:"scheduled_start" yaml:"scheduled_start"`
	ScheduledEnd   string  `json:"scheduled_end" yaml:"scheduled_end"`
	GPSCheckIn     string  `json:"gps_check_in" yaml:"gps_check_in"`
	GPSCheckOut    string  `json:"gps_check_out" yaml:"gps_check_out"`
	Supervisor     string  `json:"supervisor,omitempty" yaml:"supervisor,omitempty"`
}

// Worker returns the reference-data part of the entry.
func (e RosterEntry) Worker() Worker {
	return Worker{ID: e.ID, Name: e.Name, Role: e.Role, TrustScore: e.TrustScore}
}

// RosterUpdate is a partial update; nil fields are left unchanged.
type RosterUpdate struct {
	Name           *string  `json:"name"`
	Role           *string  `json:"role"`
	TrustScore     *float64 `json:"trust_score"`
	ScheduledStart *string  `json:"scheduled_start"`
	ScheduledEnd   *string  `json:"scheduled_end"`
	GPSCheckIn     *string  `json:"gps_check_in"`
	GPSCheckOut    *string  `json:"gps_check_out"`
	Supervisor     *string  `json:"supervisor"`
}
