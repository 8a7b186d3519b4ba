package service

import (
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Aashish23092/ghost-shift-audit/dto"
	"github.com/Aashish23092/ghost-shift-audit/utils"
)

// Reconciler matches a digital roster against a paper log and classifies
// every worker and every unaccounted paper line. It holds no mutable state
// and is safe for concurrent use.
type Reconciler struct {
	cfg       RuleConfig
	evaluator *Evaluator
}

func NewReconciler(cfg RuleConfig) *Reconciler {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Reconciler{cfg: cfg, evaluator: NewEvaluator(cfg)}
}

// rosterResult is the outcome of the roster pass for one shift.
type rosterResult struct {
	report dto.DiscrepancyReport
	match  utils.NameMatch
	line   int // index into the paper log, -1 when unmatched
}

// Reconcile returns one report per distinct roster worker, in roster order,
// followed by one UNAUTHORIZED report per paper entry that matches no
// roster worker, in paper order. Repeated worker ids are evaluated once.
func (r *Reconciler) Reconcile(roster []dto.DigitalShift, paperLog []dto.PaperLogEntry) []dto.DiscrepancyReport {
	shifts := uniqueWorkers(roster)

	paperNames, paperIndex := paperPool(paperLog)
	rosterResults := make([]rosterResult, len(shifts))

	var g errgroup.Group
	g.SetLimit(r.cfg.Workers)
	for i := range shifts {
		g.Go(func() error {
			shift := &shifts[i]
			match := utils.BestMatch(shift.WorkerName, paperNames)

			res := rosterResult{match: match, line: -1}
			var entry *dto.PaperLogEntry
			if match.Found() && match.Score >= r.cfg.MatchThreshold {
				res.line = paperIndex[match.Index]
				entry = &paperLog[res.line]
			}
			res.report = r.evaluator.evaluate(shift, entry, match)
			rosterResults[i] = res
			return nil
		})
	}
	_ = g.Wait()

	r.resolveSharedLines(shifts, paperLog, paperNames, paperIndex, rosterResults)

	rosterNames := make([]string, len(shifts))
	for i, s := range shifts {
		rosterNames[i] = s.WorkerName
	}

	paperReports := make([]*dto.DiscrepancyReport, len(paperLog))
	var pg errgroup.Group
	pg.SetLimit(r.cfg.Workers)
	for i := range paperLog {
		pg.Go(func() error {
			entry := &paperLog[i]
			match := utils.BestMatch(entry.ExtractedName, rosterNames)
			if match.Score >= r.cfg.MatchThreshold {
				return nil
			}
			report := r.evaluator.evaluate(nil, entry, match)
			paperReports[i] = &report
			return nil
		})
	}
	_ = pg.Wait()

	reports := make([]dto.DiscrepancyReport, 0, len(shifts)+len(paperLog))
	for _, res := range rosterResults {
		reports = append(reports, res.report)
	}
	for _, report := range paperReports {
		if report != nil {
			reports = append(reports, *report)
		}
	}
	return reports
}

// resolveSharedLines keeps each paper line with a single roster worker: the
// highest score wins, earlier roster position on equal scores. Other
// claimants are rematched, in roster order, against lines nobody owns and
// become ghost shifts only when no such line reaches the threshold.
func (r *Reconciler) resolveSharedLines(shifts []dto.DigitalShift, paperLog []dto.PaperLogEntry, paperNames []string, paperIndex []int, results []rosterResult) {
	owner := make(map[int]int)
	for i, res := range results {
		if res.line < 0 {
			continue
		}
		if cur, ok := owner[res.line]; !ok || res.match.Score > results[cur].match.Score {
			owner[res.line] = i
		}
	}

	for i, res := range results {
		if res.line < 0 || owner[res.line] == i {
			continue
		}

		if line, match, ok := r.rematch(&shifts[i], paperNames, paperIndex, owner); ok {
			owner[line] = i
			results[i] = rosterResult{
				report: r.evaluator.evaluate(&shifts[i], &paperLog[line], match),
				match:  match,
				line:   line,
			}
			continue
		}

		winner := shifts[owner[res.line]]
		report := r.evaluator.evaluate(&shifts[i], nil, res.match)
		addFlag(&report, dto.FlagSharedPaperLine)
		report.Evidence = append(report.Evidence, fmt.Sprintf("Paper Log Line %d is already attributed to %s (ID: %s)",
			paperLog[res.line].LineNumber, winner.WorkerName, winner.WorkerID))
		results[i].report = report
		results[i].line = -1
	}
}

// rematch finds the best unowned paper line for shift, in pool order. The
// returned match indexes the filtered candidates, not the pool.
func (r *Reconciler) rematch(shift *dto.DigitalShift, paperNames []string, paperIndex []int, owner map[int]int) (int, utils.NameMatch, bool) {
	var (
		names []string
		lines []int
	)
	for pos, line := range paperIndex {
		if _, taken := owner[line]; taken {
			continue
		}
		names = append(names, paperNames[pos])
		lines = append(lines, line)
	}

	match := utils.BestMatch(shift.WorkerName, names)
	if !match.Found() || match.Score < r.cfg.MatchThreshold {
		return -1, match, false
	}
	return lines[match.Index], match, true
}

// paperPool returns the non-empty paper names and, for each pool position,
// the index of the paper entry it came from.
func paperPool(paperLog []dto.PaperLogEntry) ([]string, []int) {
	names := make([]string, 0, len(paperLog))
	index := make([]int, 0, len(paperLog))
	for i, entry := range paperLog {
		if strings.TrimSpace(entry.ExtractedName) == "" {
			continue
		}
		names = append(names, entry.ExtractedName)
		index = append(index, i)
	}
	return names, index
}

func uniqueWorkers(roster []dto.DigitalShift) []dto.DigitalShift {
	seen := make(map[string]bool, len(roster))
	shifts := make([]dto.DigitalShift, 0, len(roster))
	for _, s := range roster {
		if seen[s.WorkerID] {
			continue
		}
		seen[s.WorkerID] = true
		shifts = append(shifts, s)
	}
	return shifts
}
