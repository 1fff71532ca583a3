package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#06B6D4"))

	headingStyle = lipgloss.NewStyle().
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	summaryBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)
)

// FormatExitSummary renders the run summary printed when supervision ends on
// the graceful path. The hard teardown path exits without a summary.
func FormatExitSummary(s Summary) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("go-proc-supervisor run summary"))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Run duration:      %s\n", FormatDuration(s.Duration))
	fmt.Fprintf(&b, "Children spawned:  %d\n", s.Spawns)
	fmt.Fprintf(&b, "Output lines:      %d (%d bytes)\n", s.Lines, s.LineBytes)

	if s.ChecksPassed > 0 || s.ChecksFailed > 0 {
		b.WriteString("\n")
		b.WriteString(headingStyle.Render("Startup checks"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "  passed: %d  failed: %d\n", s.ChecksPassed, s.ChecksFailed)
	}

	if len(s.ExitCodes) > 0 {
		b.WriteString("\n")
		b.WriteString(headingStyle.Render("Exit codes"))
		b.WriteString("\n")
		codes := make([]int, 0, len(s.ExitCodes))
		for code := range s.ExitCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Fprintf(&b, "  %3d %-12s %d\n", code, exitCodeLabel(code), s.ExitCodes[code])
		}
	}

	if len(s.Forwarded) > 0 {
		b.WriteString("\n")
		b.WriteString(headingStyle.Render("Forwarded signals"))
		b.WriteString("\n")
		signals := make([]string, 0, len(s.Forwarded))
		for sig := range s.Forwarded {
			signals = append(signals, sig)
		}
		sort.Strings(signals)
		for _, sig := range signals {
			fmt.Fprintf(&b, "  %-10s %d\n", sig, s.Forwarded[sig])
		}
	}

	if s.UptimeP50 > 0 || s.UptimeP95 > 0 {
		b.WriteString("\n")
		b.WriteString(headingStyle.Render("Child uptime"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "  P50: %s  P95: %s  P99: %s\n",
			FormatDuration(s.UptimeP50),
			FormatDuration(s.UptimeP95),
			FormatDuration(s.UptimeP99),
		)
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("supervision ended; exit status is always non-zero"))

	return summaryBox.Render(b.String())
}

// FormatDuration formats a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

// exitCodeLabel returns a human-readable label for common exit codes.
func exitCodeLabel(code int) string {
	switch code {
	case 0:
		return "(clean)"
	case 1:
		return "(error)"
	case 137:
		return "(SIGKILL)"
	case 143:
		return "(SIGTERM)"
	default:
		return ""
	}
}
