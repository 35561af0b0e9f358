package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	humanize "github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/murmur/internal/cache"
)

var (
	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "27", Dark: "39"}).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "126", Dark: "213"}).
				Bold(true)

	systemLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "241", Dark: "245"}).
				Italic(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "241", Dark: "250"}).
			Background(lipgloss.AdaptiveColor{Light: "254", Dark: "236"})

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "19", Dark: "228"}).
				Background(lipgloss.AdaptiveColor{Light: "254", Dark: "236"}).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "245", Dark: "241"})
)

const helpLine = "enter: send • ctrl+v: voice • ctrl+s: speak last • ctrl+x: stop audio • ctrl+l: clear cache • ctrl+e: export • esc: quit"

// statusBar renders the one-line footer: current voice, speech state and
// cache usage, truncated to the window width.
func statusBar(width int, voiceID string, speaking bool, demo bool, stats cache.Stats, maxEntries int, storedBytes int64) string {
	var parts []string

	note := voiceID
	if voiceID == "" {
		note = "no voice"
	}
	if demo {
		note += " (demo)"
	}
	parts = append(parts, statusBarNoteStyle.Render(" "+note+" "))

	if speaking {
		parts = append(parts, "speaking")
	}
	parts = append(parts, fmt.Sprintf("cache %d/%d", stats.Entries, maxEntries))
	parts = append(parts, fmt.Sprintf("%d hits %d misses", stats.Hits, stats.Misses))
	if storedBytes > 0 {
		parts = append(parts, humanize.Bytes(uint64(storedBytes)))
	}

	line := strings.Join(parts, " • ")
	line = truncate.StringWithTail(line, uint(max(width, 0)), "…")

	pad := width - runewidth.StringWidth(line)
	if pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return statusBarStyle.Render(line)
}
