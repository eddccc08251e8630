package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"SwipeSentinel/internal/model"
)

// FormatCycleReport formats a finished cycle into a Telegram message,
// including enough per-account detail (identity, city, status, reason)
// for operator troubleshooting of not-ready and failed accounts.
func FormatCycleReport(rep *model.CycleReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🔁 <b>Cycle %d</b> | %s\n", rep.Number, rep.StartedAt.Format("2006-01-02 15:04")))
	if rep.FatalErr != "" {
		b.WriteString(fmt.Sprintf("\n❌ <b>Cycle aborted:</b> %s\n", rep.FatalErr))
	}
	b.WriteString(fmt.Sprintf("\nProcessed: %d | Skipped: %d | Failed: %d\n", rep.Processed, rep.Skipped, rep.Failed))

	var matches int
	for _, o := range rep.Outcomes {
		matches += o.Matches
	}
	if matches > 0 {
		b.WriteString(fmt.Sprintf("Matches this cycle: %d\n", matches))
	}

	// Group skipped/failed accounts by reason so operators see the pattern
	// before the individuals.
	byReason := make(map[string][]model.AccountOutcome)
	for _, o := range rep.Outcomes {
		if o.Processed && o.Success {
			continue
		}
		key := string(o.Verdict.Reason)
		if o.Verdict.SubReason != "" {
			key += "/" + string(o.Verdict.SubReason)
		}
		if o.Processed {
			key = "FAILED"
		}
		byReason[key] = append(byReason[key], o)
	}
	if len(byReason) > 0 {
		b.WriteString("\n<b>Not processed:</b>\n")
		reasons := make([]string, 0, len(byReason))
		for r := range byReason {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)
		for _, r := range reasons {
			outcomes := byReason[r]
			b.WriteString(fmt.Sprintf("  %s (%d)\n", r, len(outcomes)))
			for _, o := range outcomes {
				line := fmt.Sprintf("    • %s [%s] %s", shortID(o.AccountID), o.City, o.Status)
				if o.Err != "" {
					line += ": " + o.Err
				} else if o.Verdict.Detail != "" {
					line += ": " + o.Verdict.Detail
				}
				b.WriteString(line + "\n")
			}
		}
	}

	b.WriteString(fmt.Sprintf("\n⏱ Next cycle: %s (%s)\n",
		rep.NextStartAt.Format("2006-01-02 15:04:05"), rep.NextStartAt.Format(time.RFC3339)))
	return b.String()
}

// FormatPoolStatus formats the username pool state for display.
func FormatPoolStatus(available, retired int) string {
	var b strings.Builder
	b.WriteString("📦 <b>Username pool</b>\n\n")
	b.WriteString(fmt.Sprintf("Available: %d\n", available))
	b.WriteString(fmt.Sprintf("Retired: %d\n", retired))
	if available == 0 {
		b.WriteString("\n⚠️ Pool is empty: add usernames to the pending file\n")
	}
	return b.String()
}

// FormatRosterSummary formats the account status distribution.
func FormatRosterSummary(counts map[model.Status]int) string {
	order := []model.Status{
		model.StatusGoldActive,
		model.StatusGoldExpiring,
		model.StatusSwipingActive,
		model.StatusAssigned,
		model.StatusFree,
		model.StatusUninitialized,
		model.StatusBanned,
		model.StatusDead,
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("👥 <b>Roster</b> | %d accounts\n\n", total))
	for _, s := range order {
		if n := counts[s]; n > 0 {
			b.WriteString(fmt.Sprintf("%s: %d\n", s, n))
		}
	}
	return b.String()
}

// shortID truncates an opaque token reference for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "…"
	}
	return id
}
