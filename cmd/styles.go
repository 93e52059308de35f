package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/juststeveking/lookout/internal/monitor"
)

var (
	colorAccent    = lipgloss.Color("#04D9FF") // Neon Cyan
	colorHealthy   = lipgloss.Color("#00FF94") // Neon Green
	colorUnhealthy = lipgloss.Color("#FF0055") // Neon Red
	colorMuted     = lipgloss.Color("#565f89") // Muted Blue

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	healthyStyle = lipgloss.NewStyle().
			Foreground(colorHealthy).
			Bold(true)

	unhealthyStyle = lipgloss.NewStyle().
			Foreground(colorUnhealthy).
			Bold(true)

	metadataStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorUnhealthy)
)

// statusIcon returns the colored indicator for a result
func statusIcon(status monitor.Status) string {
	if status == monitor.StatusUp {
		return healthyStyle.Render("●")
	}
	return unhealthyStyle.Render("●")
}

// renderSnapshot writes one line per result, padded so targets line up
func renderSnapshot(w io.Writer, snapshot monitor.Snapshot) {
	width := 0
	for _, r := range snapshot {
		width = max(width, len(r.Name))
	}

	for _, r := range snapshot {
		name := r.Name + strings.Repeat(" ", width-len(r.Name))
		fmt.Fprintf(w, "  %s %s  %s\n", statusIcon(r.Status), name, metadataStyle.Render(r.Target))
		if r.Error != "" {
			fmt.Fprintf(w, "    %s\n", errorStyle.Render(r.Error))
		}
	}
}

// summary is the "2/3 up" style headline for a snapshot
func summary(snapshot monitor.Snapshot) string {
	down := len(snapshot.Failed())
	up := len(snapshot) - down
	text := fmt.Sprintf("%d/%d up", up, len(snapshot))
	if down > 0 {
		return unhealthyStyle.Render(text)
	}
	return healthyStyle.Render(text)
}
