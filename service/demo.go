package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aashish23092/ghost-shift-audit/dto"
)

var ErrUnknownScenario = errors.New("unknown demo scenario")

// DemoScenarios lists the canned data sets served by Demo.
var DemoScenarios = []string{"clean", "ghost", "late", "theft", "unauthorized"}

var demoWorkers = []dto.Worker{
	{ID: "TRB-101", Name: "John Doe", Role: "Packer", TrustScore: 0.95},
	{ID: "TRB-102", Name: "Jane Smith", Role: "Packer", TrustScore: 0.98},
	{ID: "TRB-103", Name: "Michael Johnson", Role: "Forklift", TrustScore: 0.85},
	{ID: "TRB-500", Name: "Alex Ghost", Role: "Packer", TrustScore: 0.40},
}

const demoSupervisor = "SUP-AK"

// DemoData builds a deterministic roster and paper log for a scenario.
func DemoData(scenario string) ([]dto.DigitalShift, []dto.PaperLogEntry, error) {
	known := false
	for _, s := range DemoScenarios {
		known = known || s == scenario
	}
	if !known {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownScenario, scenario)
	}

	workers := demoWorkers
	if scenario == "clean" {
		workers = demoWorkers[:3]
	}

	shifts := make([]dto.DigitalShift, 0, len(workers))
	logs := make([]dto.PaperLogEntry, 0, len(workers)+1)

	for _, w := range workers {
		gpsIn, paperIn := "07:55", "07:58"
		if w.ID == "TRB-500" {
			gpsIn = "07:59"
		}
		if w.ID == "TRB-103" {
			switch scenario {
			case "late":
				gpsIn, paperIn = "08:15", "08:15"
			case "theft":
				gpsIn, paperIn = "08:20", "08:00"
			}
		}

		shifts = append(shifts, dto.DigitalShift{
			ShiftID:        "SH-" + w.ID,
			WorkerID:       w.ID,
			WorkerName:     w.Name,
			ScheduledStart: "08:00",
			ScheduledEnd:   "16:00",
			GPSCheckIn:     strPtr(gpsIn),
			GPSCheckOut:    strPtr("16:05"),
			Status:         dto.ShiftCompleted,
			Supervisor:     demoSupervisor,
		})

		if scenario == "ghost" && w.ID == "TRB-500" {
			continue
		}

		line := len(logs) + 1
		logs = append(logs, dto.PaperLogEntry{
			LineNumber:       line,
			RawText:          fmt.Sprintf("%d. %s - In: %s - Out: 16:02 - Sup: %s", line, w.Name, paperIn, demoSupervisor),
			ExtractedName:    w.Name,
			ExtractedTimeIn:  paperIn,
			ExtractedTimeOut: strPtr("16:02"),
			Supervisor:       strPtr(demoSupervisor),
			SignaturePresent: boolPtr(true),
		})
	}

	if scenario == "unauthorized" {
		line := len(logs) + 1
		logs = append(logs, dto.PaperLogEntry{
			LineNumber:      line,
			RawText:         fmt.Sprintf("%d. Unknown Intruder - In: 08:05 - Out: ?? - Sup: ??", line),
			ExtractedName:   "Unknown Intruder",
			ExtractedTimeIn: "08:05",
		})
	}

	return shifts, logs, nil
}

// Demo reconciles a canned scenario.
func (s *AuditService) Demo(ctx context.Context, scenario string) (*dto.AuditResponse, error) {
	shifts, logs, err := DemoData(scenario)
	if err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, &dto.ReconcileRequest{Shifts: shifts, Logs: logs})
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
