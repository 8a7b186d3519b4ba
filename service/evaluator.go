package service

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Aashish23092/ghost-shift-audit/dto"
	"github.com/Aashish23092/ghost-shift-audit/utils"
)

// ErrNoObservation is returned by Evaluate when neither a shift nor a paper
// entry is supplied.
var ErrNoObservation = errors.New("evaluate: shift and paper entry are both absent")

const (
	confidenceUnauthorized      = 0.88
	confidenceGhostShift        = 0.92
	confidenceTimeTheft         = 0.95
	confidenceLateArrival       = 0.95
	confidenceEarlyDeparture    = 0.90
	confidenceMissingSupervisor = 0.85
)

// RuleConfig holds the thresholds used by the evaluator and reconciler.
// Tolerances are in minutes.
type RuleConfig struct {
	MatchThreshold          int
	TheftTolerance          int
	LateTolerance           int
	EarlyDepartureTolerance int
	CheckEarlyDeparture     bool
	RequireSupervisor       bool
	Workers                 int
}

// DefaultRuleConfig returns the production thresholds.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		MatchThreshold:          80,
		TheftTolerance:          5,
		LateTolerance:           10,
		EarlyDepartureTolerance: 10,
		Workers:                 4,
	}
}

// Evaluator classifies a single shift/paper observation.
type Evaluator struct {
	cfg RuleConfig
}

func NewEvaluator(cfg RuleConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate applies the discrepancy rules in precedence order and returns the
// verdict for one observation. A nil shift models a paper entry with no
// roster identity; a nil entry models a rostered worker missing from paper.
// match is the best identity match found for whichever side is present.
func (e *Evaluator) Evaluate(shift *dto.DigitalShift, entry *dto.PaperLogEntry, match utils.NameMatch) (dto.DiscrepancyReport, error) {
	if shift == nil && entry == nil {
		return dto.DiscrepancyReport{}, ErrNoObservation
	}
	return e.evaluate(shift, entry, match), nil
}

func (e *Evaluator) evaluate(shift *dto.DigitalShift, entry *dto.PaperLogEntry, match utils.NameMatch) dto.DiscrepancyReport {
	r := newReport(shift, entry)
	if match.Ambiguous() && match.Score >= e.cfg.MatchThreshold {
		addFlag(&r, dto.FlagAmbiguousMatch)
	}

	switch {
	case shift == nil:
		e.unauthorized(&r, entry, match)
	case entry == nil || match.Score < e.cfg.MatchThreshold:
		e.ghostShift(&r, shift, match)
	default:
		e.matched(&r, shift, entry, match)
	}
	return r
}

func (e *Evaluator) unauthorized(r *dto.DiscrepancyReport, entry *dto.PaperLogEntry, match utils.NameMatch) {
	r.WorkerName = entry.ExtractedName
	r.HasIssue = true
	r.IssueType = dto.DiscrepancyUnauthorized
	r.Confidence = confidenceUnauthorized
	r.Reasoning = fmt.Sprintf("%s signed the paper log on line %d but has no matching entry in the digital roster.",
		displayName(entry.ExtractedName), entry.LineNumber)

	raw := entry.RawText
	if strings.TrimSpace(raw) == "" {
		raw = entry.ExtractedName
	}
	r.Evidence = append(r.Evidence, fmt.Sprintf("Paper Log Line %d: %s", entry.LineNumber, raw))
	if t := strings.TrimSpace(entry.ExtractedTimeIn); t != "" {
		r.Evidence = append(r.Evidence, "Paper Sign-in: "+t)
	}
	if match.Found() {
		r.Evidence = append(r.Evidence, fmt.Sprintf("Closest Roster Match: '%s' (Confidence: %d%%)", match.Name, match.Score))
	} else {
		r.Evidence = append(r.Evidence, "Digital Roster: no workers scheduled")
	}
}

func (e *Evaluator) ghostShift(r *dto.DiscrepancyReport, shift *dto.DigitalShift, match utils.NameMatch) {
	r.HasIssue = true
	r.IssueType = dto.DiscrepancyGhostShift
	r.Confidence = confidenceGhostShift
	r.Reasoning = fmt.Sprintf("%s is on the digital roster but does not appear on the physical sign-in sheet.",
		displayName(shift.WorkerName))

	r.Evidence = append(r.Evidence, rosterEvidence(shift))
	if match.Found() {
		r.Evidence = append(r.Evidence, matchEvidence(match))
	} else {
		r.Evidence = append(r.Evidence, "Paper Log: no names to match against")
	}
	if gps := optional(shift.GPSCheckIn); gps != "" {
		r.Evidence = append(r.Evidence, fmt.Sprintf("GPS Signal: Present at %s (Suspicious - No Physical Sig)", gps))
	} else {
		r.Evidence = append(r.Evidence, "GPS Signal: None recorded")
	}
}

func (e *Evaluator) matched(r *dto.DiscrepancyReport, shift *dto.DigitalShift, entry *dto.PaperLogEntry, match utils.NameMatch) {
	r.Evidence = append(r.Evidence, rosterEvidence(shift), matchEvidence(match))
	if entry.SignaturePresent != nil && !*entry.SignaturePresent {
		addFlag(r, dto.FlagNoSignature)
	}

	if e.checkTiming(r, shift, entry) {
		return
	}

	if e.cfg.RequireSupervisor && optional(entry.Supervisor) == "" {
		r.HasIssue = true
		r.IssueType = dto.DiscrepancyMissingSupervisor
		r.Confidence = confidenceMissingSupervisor
		r.Reasoning = fmt.Sprintf("%s signed in on paper line %d without a supervisor sign-off.",
			displayName(shift.WorkerName), entry.LineNumber)
		r.Evidence = append(r.Evidence, fmt.Sprintf("Paper Log Line %d: no supervisor recorded", entry.LineNumber))
		return
	}

	r.HasIssue = false
	r.IssueType = dto.DiscrepancyClean
	r.Confidence = float64(match.Score) / 100
	if hasFlag(r, dto.FlagUnverifiableTime) {
		r.Reasoning = fmt.Sprintf("%s appears on both records but the recorded times could not be verified; classified on identity only.",
			displayName(shift.WorkerName))
		return
	}
	r.Reasoning = fmt.Sprintf("%s appears on both the digital roster and the paper log with consistent times.",
		displayName(shift.WorkerName))
	if t := strings.TrimSpace(entry.ExtractedTimeIn); t != "" {
		r.Evidence = append(r.Evidence, "Paper Sign-in: "+t)
	}
	if gps := optional(shift.GPSCheckIn); gps != "" {
		r.Evidence = append(r.Evidence, "GPS Check-in: "+gps)
	}
}

// checkTiming runs the timing rules and reports whether one of them decided
// the verdict. Unreadable times flag the report and skip the affected rule.
func (e *Evaluator) checkTiming(r *dto.DiscrepancyReport, shift *dto.DigitalShift, entry *dto.PaperLogEntry) bool {
	gpsRaw := optional(shift.GPSCheckIn)
	if gpsRaw == "" {
		addFlag(r, dto.FlagGPSMissing)
		r.Evidence = append(r.Evidence, "GPS Signal: None recorded")
		return false
	}

	paperIn, err := utils.ParseClock("extracted_time_in", entry.ExtractedTimeIn)
	if err != nil {
		e.unverifiable(r, err)
		return false
	}
	gpsIn, err := utils.ParseClock("gps_check_in", gpsRaw)
	if err != nil {
		e.unverifiable(r, err)
		return false
	}

	if delta := gpsIn - paperIn; delta > e.cfg.TheftTolerance {
		r.HasIssue = true
		r.IssueType = dto.DiscrepancyTimeTheft
		r.Confidence = confidenceTimeTheft
		r.Reasoning = fmt.Sprintf("%s signed in on paper at %s but GPS places arrival at %s, %d minutes later than claimed.",
			displayName(shift.WorkerName), utils.FormatClock(paperIn), utils.FormatClock(gpsIn), delta)
		r.Evidence = append(r.Evidence,
			"Paper Sign-in: "+utils.FormatClock(paperIn),
			"GPS Check-in: "+utils.FormatClock(gpsIn),
			fmt.Sprintf("Paper sign-in precedes GPS check-in by %d minutes", delta),
		)
		return true
	}

	start, err := utils.ParseClock("scheduled_start", shift.ScheduledStart)
	if err != nil {
		e.unverifiable(r, err)
	} else if paperLate, gpsLate := paperIn-start, gpsIn-start; paperLate > e.cfg.LateTolerance && gpsLate > e.cfg.LateTolerance {
		r.HasIssue = true
		r.IssueType = dto.DiscrepancyLateArrival
		r.Confidence = confidenceLateArrival
		r.Reasoning = fmt.Sprintf("%s was scheduled for %s; paper and GPS both record a late arrival.",
			displayName(shift.WorkerName), utils.FormatClock(start))
		r.Evidence = append(r.Evidence,
			"Scheduled Start: "+utils.FormatClock(start),
			fmt.Sprintf("Paper Sign-in: %s (%d minutes late)", utils.FormatClock(paperIn), paperLate),
			fmt.Sprintf("GPS Check-in: %s (%d minutes late)", utils.FormatClock(gpsIn), gpsLate),
		)
		return true
	}

	if e.cfg.CheckEarlyDeparture {
		return e.checkEarlyDeparture(r, shift, entry)
	}
	return false
}

func (e *Evaluator) checkEarlyDeparture(r *dto.DiscrepancyReport, shift *dto.DigitalShift, entry *dto.PaperLogEntry) bool {
	paperRaw, gpsRaw := optional(entry.ExtractedTimeOut), optional(shift.GPSCheckOut)
	if paperRaw == "" || gpsRaw == "" {
		return false
	}

	end, err := utils.ParseClock("scheduled_end", shift.ScheduledEnd)
	if err != nil {
		e.unverifiable(r, err)
		return false
	}
	paperOut, err := utils.ParseClock("extracted_time_out", paperRaw)
	if err != nil {
		e.unverifiable(r, err)
		return false
	}
	gpsOut, err := utils.ParseClock("gps_check_out", gpsRaw)
	if err != nil {
		e.unverifiable(r, err)
		return false
	}

	paperEarly, gpsEarly := end-paperOut, end-gpsOut
	if paperEarly <= e.cfg.EarlyDepartureTolerance || gpsEarly <= e.cfg.EarlyDepartureTolerance {
		return false
	}

	r.HasIssue = true
	r.IssueType = dto.DiscrepancyEarlyDeparture
	r.Confidence = confidenceEarlyDeparture
	r.Reasoning = fmt.Sprintf("%s was scheduled until %s; paper and GPS both record an early departure.",
		displayName(shift.WorkerName), utils.FormatClock(end))
	r.Evidence = append(r.Evidence,
		"Scheduled End: "+utils.FormatClock(end),
		fmt.Sprintf("Paper Sign-out: %s (%d minutes early)", utils.FormatClock(paperOut), paperEarly),
		fmt.Sprintf("GPS Check-out: %s (%d minutes early)", utils.FormatClock(gpsOut), gpsEarly),
	)
	return true
}

func (e *Evaluator) unverifiable(r *dto.DiscrepancyReport, err error) {
	addFlag(r, dto.FlagUnverifiableTime)
	var mte *utils.MalformedTimeError
	if errors.As(err, &mte) {
		r.Evidence = append(r.Evidence, fmt.Sprintf("Unreadable %s: %q", mte.Field, mte.Value))
	}
}

func newReport(shift *dto.DigitalShift, entry *dto.PaperLogEntry) dto.DiscrepancyReport {
	r := dto.DiscrepancyReport{
		Evidence:         []string{},
		MatchedFields:    []string{},
		MismatchedFields: []dto.FieldComparison{},
		Flags:            []string{},
		PaperData:        paperData(entry),
		DatabaseData:     databaseData(shift),
	}
	if shift != nil {
		id := shift.WorkerID
		r.WorkerID = &id
		r.WorkerName = shift.WorkerName
	}
	compareFields(&r, shift, entry)
	return r
}

// compareFields fills matched/mismatched fields. A field absent on both
// sides is skipped; absent on one side is a mismatch with an empty value.
func compareFields(r *dto.DiscrepancyReport, shift *dto.DigitalShift, entry *dto.PaperLogEntry) {
	var paper, db [4]string
	if entry != nil {
		paper = [4]string{entry.ExtractedName, entry.ExtractedTimeIn, optional(entry.ExtractedTimeOut), optional(entry.Supervisor)}
	}
	if shift != nil {
		db = [4]string{shift.WorkerName, optional(shift.GPSCheckIn), optional(shift.GPSCheckOut), shift.Supervisor}
	}

	for i, field := range []string{"name", "time_in", "time_out", "supervisor"} {
		p, d := strings.TrimSpace(paper[i]), strings.TrimSpace(db[i])
		if p == "" && d == "" {
			continue
		}
		if strings.EqualFold(p, d) {
			r.MatchedFields = append(r.MatchedFields, field)
			continue
		}
		r.MismatchedFields = append(r.MismatchedFields, dto.FieldComparison{
			FieldName:     field,
			PaperValue:    p,
			DatabaseValue: d,
			Matches:       false,
		})
	}
}

func paperData(entry *dto.PaperLogEntry) map[string]string {
	data := map[string]string{}
	if entry == nil {
		return data
	}
	data["line_number"] = strconv.Itoa(entry.LineNumber)
	data["raw_text"] = entry.RawText
	data["extracted_name"] = entry.ExtractedName
	data["extracted_time_in"] = entry.ExtractedTimeIn
	if entry.ExtractedTimeOut != nil {
		data["extracted_time_out"] = *entry.ExtractedTimeOut
	}
	if entry.Supervisor != nil {
		data["supervisor"] = *entry.Supervisor
	}
	if entry.SignaturePresent != nil {
		data["signature_present"] = strconv.FormatBool(*entry.SignaturePresent)
	}
	return data
}

func databaseData(shift *dto.DigitalShift) map[string]string {
	data := map[string]string{}
	if shift == nil {
		return data
	}
	data["shift_id"] = shift.ShiftID
	data["worker_id"] = shift.WorkerID
	data["worker_name"] = shift.WorkerName
	data["scheduled_start"] = shift.ScheduledStart
	data["scheduled_end"] = shift.ScheduledEnd
	data["status"] = string(shift.Status)
	if shift.GPSCheckIn != nil {
		data["gps_check_in"] = *shift.GPSCheckIn
	}
	if shift.GPSCheckOut != nil {
		data["gps_check_out"] = *shift.GPSCheckOut
	}
	if shift.Supervisor != "" {
		data["supervisor"] = shift.Supervisor
	}
	return data
}

func rosterEvidence(shift *dto.DigitalShift) string {
	return fmt.Sprintf("Digital Roster: %s (ID: %s)", shift.WorkerName, shift.WorkerID)
}

func matchEvidence(match utils.NameMatch) string {
	return fmt.Sprintf("Best Paper Match: '%s' (Confidence: %d%%)", match.Name, match.Score)
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "An unreadable name"
	}
	return name
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func addFlag(r *dto.DiscrepancyReport, flag string) {
	if !hasFlag(r, flag) {
		r.Flags = append(r.Flags, flag)
	}
}

func hasFlag(r *dto.DiscrepancyReport, flag string) bool {
	return slices.Contains(r.Flags, flag)
}
