package ui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgnsrekt/murmur/internal/cache"
	"github.com/dgnsrekt/murmur/internal/voice"
)

func testCatalog(t *testing.T) *voice.Catalog {
	t.Helper()
	c, err := voice.NewCatalog([]voice.Voice{
		{ID: "en-US-natalie", Name: "Natalie", Language: "en-US", Gender: "female"},
		{ID: "en-GB-charlotte", Name: "Charlotte", Language: "en-GB", Gender: "female"},
		{ID: "ja-JP-akira", Name: "Akira", Language: "ja-JP", Gender: "male"},
	})
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}
	return c
}

func TestVoicePicker_FilterNarrowsList(t *testing.T) {
	p := newVoicePicker(testCatalog(t))
	if len(p.filtered) != 3 {
		t.Fatalf("unfiltered list has %d entries, want 3", len(p.filtered))
	}

	for _, r := range "akira" {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	if len(p.filtered) != 1 || p.filtered[0].ID != "ja-JP-akira" {
		t.Errorf("filtered=%v, want only ja-JP-akira", p.filtered)
	}
}

func TestVoicePicker_BackspaceWidensFilter(t *testing.T) {
	p := newVoicePicker(testCatalog(t))
	for _, r := range "natalie" {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	if len(p.filtered) != 1 {
		t.Fatalf("filtered=%d, want 1", len(p.filtered))
	}

	for range "natalie" {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	if len(p.filtered) != 3 {
		t.Errorf("filtered=%d after clearing, want 3", len(p.filtered))
	}
}

func TestVoicePicker_EnterSelects(t *testing.T) {
	p := newVoicePicker(testCatalog(t))
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}

	msg, ok := cmd().(voiceChosenMsg)
	if !ok {
		t.Fatalf("enter produced %T, want voiceChosenMsg", cmd())
	}
	if msg.id != "en-GB-charlotte" {
		t.Errorf("chose %s, want en-GB-charlotte", msg.id)
	}
	_ = p
}

func TestVoicePicker_EscCancels(t *testing.T) {
	p := newVoicePicker(testCatalog(t))
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc produced no command")
	}
	if _, ok := cmd().(pickerClosedMsg); !ok {
		t.Errorf("esc produced %T, want pickerClosedMsg", cmd())
	}
}

func TestVoicePicker_CursorStaysVisibleWhenScrolling(t *testing.T) {
	voices := make([]voice.Voice, 15)
	for i := range voices {
		voices[i] = voice.Voice{
			ID:       fmt.Sprintf("en-US-voice%02d", i),
			Name:     fmt.Sprintf("Voice %02d", i),
			Language: "en-US",
			Gender:   "female",
		}
	}
	catalog, err := voice.NewCatalog(voices)
	if err != nil {
		t.Fatalf("NewCatalog failed: %v", err)
	}

	p := newVoicePicker(catalog)
	for i := 0; i < 12; i++ {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	}

	view := p.View()
	if !strings.Contains(view, "> en-US-voice12") {
		t.Errorf("selection marker not visible for scrolled cursor:\n%s", view)
	}
	if strings.Contains(view, "en-US-voice00") {
		t.Errorf("list did not scroll, first entry still shown:\n%s", view)
	}

	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	msg, ok := cmd().(voiceChosenMsg)
	if !ok || msg.id != "en-US-voice12" {
		t.Errorf("chose %v, want en-US-voice12", cmd())
	}
	_ = p
}

func TestStatusBar_ShowsVoiceAndCounts(t *testing.T) {
	stats := cache.Stats{Hits: 4, Misses: 2, Entries: 6}
	bar := statusBar(120, "en-US-natalie", false, false, stats, 50, 0)

	for _, want := range []string{"en-US-natalie", "cache 6/50", "4 hits", "2 misses"} {
		if !strings.Contains(bar, want) {
			t.Errorf("status bar missing %q:\n%s", want, bar)
		}
	}
}

func TestStatusBar_DemoTag(t *testing.T) {
	bar := statusBar(120, "en-US-natalie", false, true, cache.Stats{}, 50, 0)
	if !strings.Contains(bar, "(demo)") {
		t.Errorf("status bar missing demo tag:\n%s", bar)
	}
}

func TestStateString(t *testing.T) {
	if stateThinking.String() != "waiting for reply" {
		t.Errorf("unexpected state string %q", stateThinking.String())
	}
}
