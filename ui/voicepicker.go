package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/dgnsrekt/murmur/internal/voice"
)

// voicePicker is a fuzzy-filterable overlay listing the voice catalog.
type voicePicker struct {
	voices   []voice.Voice
	filter   string
	filtered []voice.Voice
	cursor   int
	height   int
}

var (
	pickerTitleStyle = lipgloss.NewStyle().Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "126", Dark: "213"})

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "27", Dark: "39"}).
				Bold(true)

	pickerDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "245", Dark: "241"})
)

func newVoicePicker(catalog *voice.Catalog) voicePicker {
	p := voicePicker{
		voices: catalog.Voices(),
		height: 10,
	}
	p.applyFilter()
	return p
}

// voiceChosenMsg reports the picker's selection.
type voiceChosenMsg struct {
	id string
}

// pickerClosedMsg reports the picker being dismissed without a choice.
type pickerClosedMsg struct{}

func (p voicePicker) Update(msg tea.Msg) (voicePicker, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch keyMsg.String() {
	case "esc":
		return p, func() tea.Msg { return pickerClosedMsg{} }

	case "enter":
		if len(p.filtered) == 0 {
			return p, func() tea.Msg { return pickerClosedMsg{} }
		}
		id := p.filtered[p.cursor].ID
		return p, func() tea.Msg { return voiceChosenMsg{id: id} }

	case "up", "ctrl+p":
		if p.cursor > 0 {
			p.cursor--
		}

	case "down", "ctrl+n":
		if p.cursor < len(p.filtered)-1 {
			p.cursor++
		}

	case "backspace":
		if len(p.filter) > 0 {
			p.filter = p.filter[:len(p.filter)-1]
			p.applyFilter()
		}

	default:
		if keyMsg.Type == tea.KeyRunes {
			p.filter += string(keyMsg.Runes)
			p.applyFilter()
		}
	}

	return p, nil
}

// applyFilter re-ranks the catalog against the typed filter.
func (p *voicePicker) applyFilter() {
	p.cursor = 0
	if p.filter == "" {
		p.filtered = p.voices
		return
	}

	haystack := make([]string, len(p.voices))
	for i, v := range p.voices {
		haystack[i] = v.ID + " " + v.Name + " " + v.Language
	}

	matches := fuzzy.Find(p.filter, haystack)
	p.filtered = make([]voice.Voice, 0, len(matches))
	for _, m := range matches {
		p.filtered = append(p.filtered, p.voices[m.Index])
	}
}

func (p voicePicker) View() string {
	var b strings.Builder

	b.WriteString(pickerTitleStyle.Render("Choose a voice"))
	b.WriteString("\n")
	b.WriteString(pickerDimStyle.Render("filter: " + p.filter))
	b.WriteString("\n\n")

	// Window the list so the cursor stays visible.
	start := 0
	if p.cursor >= p.height {
		start = p.cursor - p.height + 1
	}
	end := start + p.height
	if end > len(p.filtered) {
		end = len(p.filtered)
	}
	shown := p.filtered[start:end]
	if len(shown) == 0 {
		b.WriteString(pickerDimStyle.Render("no matches"))
	}

	for i, v := range shown {
		line := fmt.Sprintf("%-18s %s (%s, %s)", v.ID, v.Name, v.Language, v.Gender)
		if start+i == p.cursor {
			b.WriteString(pickerSelectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pickerDimStyle.Render("enter: select • esc: cancel"))
	return b.String()
}
