package notify

import (
	"strings"

	"github.com/juststeveking/lookout/internal/monitor"
)

// DowntimeMessage is a medium-agnostic description of the current outage
type DowntimeMessage struct {
	// Title is "<name> Down" for one failure, "Multiple Systems Disrupted" otherwise.
	Title string
	// Body lists the affected checks as plain text.
	Body         string
	FailedChecks monitor.Snapshot
}

// BuildDowntimeMessage describes the given failed checks
func BuildDowntimeMessage(failed monitor.Snapshot) DowntimeMessage {
	lines := make([]string, 0, len(failed))
	for _, check := range failed {
		line := "🔴 " + check.Name
		if check.Error != "" {
			line += ": " + check.Error
		}
		lines = append(lines, line)
	}

	title := "Multiple Systems Disrupted"
	if len(failed) == 1 {
		title = failed[0].Name + " Down"
	}

	return DowntimeMessage{
		Title:        title,
		Body:         "Affected services:\n\n" + strings.Join(lines, "\n\n"),
		FailedChecks: failed,
	}
}
