package bench

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/runningwild/rrtune/pkg/fio"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	policyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Table renders the policy comparison. Bandwidth is shown in MiB/s; for
// multithread columns the aggregate comes first with the single-worker
// figure in parentheses.
func Table(results []PolicyResult) string {
	if len(results) == 0 {
		return ""
	}

	jobs := results[0].Jobs
	headers := []string{
		"policy",
		"seqread (1 job)",
		fmt.Sprintf("seqread (%d jobs)", jobs),
		"randread (1 job)",
		fmt.Sprintf("randread (%d jobs)", jobs),
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.Policy,
			mibs(r.SeqSingle),
			multiCell(r.SeqMultiSum, r.SeqMulti),
			mibs(r.RandSingle),
			multiCell(r.RandMultiSum, r.RandMulti),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	for i, h := range headers {
		sb.WriteString(headerStyle.Render(pad(h, widths[i])))
		if i < len(headers)-1 {
			sb.WriteString("  ")
		}
	}
	sb.WriteString("\n")

	for _, row := range rows {
		for i, cell := range row {
			if i == 0 {
				sb.WriteString(policyStyle.Render(pad(cell, widths[i])))
			} else {
				sb.WriteString(pad(cell, widths[i]))
			}
			if i < len(row)-1 {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func mibs(bw int64) string {
	return fmt.Sprintf("%d MiB/s", fio.MiBps(bw))
}

func multiCell(sum, single int64) string {
	return fmt.Sprintf("%d MiB/s (%d MiB/s)", fio.MiBps(sum), fio.MiBps(single))
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
