package compile

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pbooth01/cli2ansible/internal/domain"
)

// topCommandCount limits the most-frequent-commands list in reports.
const topCommandCount = 5

// BuildReport aggregates translation statistics for one session. It is a pure
// function of its inputs and safe to re-run: the same commands, tasks and
// skipped list always produce the same report (up to GeneratedAt).
//
// Invariant: TotalCommands == high + medium + low + len(skipped), and the
// three percentages sum to 100 when TotalCommands > 0.
func BuildReport(sessionID uuid.UUID, commands []domain.Command, tasks []domain.Task, skipped []string) domain.Report {
	report := domain.Report{
		SessionID:       sessionID,
		TotalCommands:   len(commands),
		Warnings:        []string{},
		SkippedCommands: append([]string{}, skipped...),
		GeneratedAt:     time.Now().UTC(),
		ModuleBreakdown: map[string]int{},
	}

	for _, task := range tasks {
		switch task.Confidence {
		case domain.ConfidenceHigh:
			report.HighConfidence++
		case domain.ConfidenceMedium:
			report.MediumConfidence++
		default:
			report.LowConfidence++
		}
		report.ModuleBreakdown[task.Module]++
	}

	if report.TotalCommands > 0 {
		total := float64(report.TotalCommands)
		report.HighConfidencePercent = float64(report.HighConfidence) / total * 100
		report.MediumConfidencePercent = float64(report.MediumConfidence) / total * 100
		report.LowConfidencePercent = float64(report.LowConfidence) / total * 100
	}

	if len(commands) > 1 {
		minTS, maxTS := commands[0].Timestamp, commands[0].Timestamp
		for _, cmd := range commands[1:] {
			if cmd.Timestamp < minTS {
				minTS = cmd.Timestamp
			}
			if cmd.Timestamp > maxTS {
				maxTS = cmd.Timestamp
			}
		}
		report.SessionDurationSeconds = maxTS - minTS
	}

	report.MostCommonCommands = mostCommon(commands, topCommandCount)

	for _, cmd := range commands {
		if cmd.Sudo {
			report.SudoCommandCount++
		}
	}

	return report
}

// mostCommon returns the top-n normalized command strings by occurrence
// count, ties broken by order of first appearance.
func mostCommon(commands []domain.Command, n int) []domain.CommandCount {
	counts := map[string]int{}
	firstSeen := map[string]int{}
	var order []string
	for i, cmd := range commands {
		if _, seen := counts[cmd.Normalized]; !seen {
			firstSeen[cmd.Normalized] = i
			order = append(order, cmd.Normalized)
		}
		counts[cmd.Normalized]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	out := make([]domain.CommandCount, 0, len(order))
	for _, cmd := range order {
		out = append(out, domain.CommandCount{Command: cmd, Count: counts[cmd]})
	}
	return out
}
