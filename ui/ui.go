// Package ui is the terminal chat window.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	te "github.com/muesli/termenv"

	"github.com/dgnsrekt/murmur/internal/cache"
	"github.com/dgnsrekt/murmur/internal/chat"
	"github.com/dgnsrekt/murmur/internal/command"
	"github.com/dgnsrekt/murmur/internal/speech"
	"github.com/dgnsrekt/murmur/internal/voice"
)

// Deps are the collaborators the window drives. All are owned by the
// caller; the UI never closes them.
type Deps struct {
	Chat       *chat.Client
	History    *chat.History
	Speaker    *speech.Speaker
	Dispatcher *command.Dispatcher
	Cache      *cache.Cache
	Catalog    *voice.Catalog

	// DiskStore is set when the cache persists to disk; used for the
	// status bar's stored-size readout. Nil in ephemeral mode.
	DiskStore *cache.DiskStore
}

// NewProgram returns a new Tea program running the chat window.
func NewProgram(cfg Config, deps Deps) *tea.Program {
	log.Debug("starting chat window", "glamour", cfg.GlamourEnabled, "no_speech", cfg.NoSpeech)

	if cfg.GlamourStyle == "" || cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, deps), opts...)
}

// state is the top-level window state.
type state int

const (
	stateTyping state = iota
	stateThinking
	statePickingVoice
)

func (s state) String() string {
	return map[state]string{
		stateTyping:       "typing",
		stateThinking:     "waiting for reply",
		statePickingVoice: "picking voice",
	}[s]
}

type model struct {
	cfg  Config
	deps Deps

	state    state
	fatalErr error

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	picker   voicePicker

	width  int
	height int
	ready  bool

	// status is a transient line under the input, cleared by timeout.
	status string
}

func newModel(cfg Config, deps Deps) model {
	input := textarea.New()
	input.Placeholder = "Say something..."
	input.CharLimit = 2000
	input.SetHeight(2)
	input.ShowLineNumbers = false
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "126", Dark: "213"})

	return model{
		cfg:     cfg,
		deps:    deps,
		state:   stateTyping,
		input:   input,
		spinner: sp,
		picker:  newVoicePicker(deps.Catalog),
	}
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshTranscript()
		m.ready = true

	case tea.KeyMsg:
		if m.state == statePickingVoice {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)

	case replyMsg:
		m.state = stateTyping
		m.deps.History.Append(chat.RoleAssistant, msg.content)
		m.refreshTranscript()
		if !m.cfg.NoSpeech {
			if last, ok := m.deps.History.Last(chat.RoleAssistant); ok {
				if err := m.deps.Speaker.Say(last.ID, last.Content, false); err != nil &&
					err != speech.ErrNothingToSay {
					m.setStatus(errorStyle.Render(err.Error()))
					cmds = append(cmds, statusTimeoutCmd())
				}
			}
		}

	case commandDoneMsg:
		m.state = stateTyping
		m.deps.History.Append(chat.RoleSystem, msg.confirmation)
		m.refreshTranscript()

	case voiceChosenMsg:
		m.state = stateTyping
		m.deps.Speaker.SetVoice(msg.id)
		m.setStatus("voice set to " + msg.id)
		cmds = append(cmds, statusTimeoutCmd())
		if !m.cfg.NoSpeech {
			greeting := fmt.Sprintf("Hello! This is %s.", msg.id)
			if err := m.deps.Speaker.Say("voice-test", greeting, true); err != nil {
				log.Warn("voice test failed", "err", err)
			}
		}

	case pickerClosedMsg:
		m.state = stateTyping

	case statusTimeoutMsg:
		m.status = ""

	case errMsg:
		m.state = stateTyping
		m.setStatus(errorStyle.Render(msg.Error()))
		cmds = append(cmds, statusTimeoutCmd())

	case spinner.TickMsg:
		if m.state == stateThinking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if m.state == stateTyping {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		return m, tea.Quit

	case "enter":
		if m.state != stateTyping {
			return m, nil
		}
		return m.submit()

	case "ctrl+v":
		m.state = statePickingVoice
		m.picker = newVoicePicker(m.deps.Catalog)
		return m, nil

	case "ctrl+s":
		if m.cfg.NoSpeech {
			return m, nil
		}
		last, ok := m.deps.History.Last(chat.RoleAssistant)
		if !ok {
			return m, nil
		}
		if err := m.deps.Speaker.Say(last.ID, last.Content, true); err != nil &&
			err != speech.ErrNothingToSay {
			m.setStatus(errorStyle.Render(err.Error()))
			return m, statusTimeoutCmd()
		}
		return m, nil

	case "ctrl+x":
		if m.cfg.NoSpeech {
			return m, nil
		}
		if err := m.deps.Speaker.Stop(); err != nil {
			log.Warn("failed to stop playback", "err", err)
		}
		return m, nil

	case "ctrl+l":
		if err := m.deps.Cache.Clear(); err != nil {
			m.setStatus(errorStyle.Render(err.Error()))
		} else {
			m.setStatus("cache cleared")
		}
		return m, statusTimeoutCmd()

	case "ctrl+e":
		path := filepath.Join(m.cfg.HomeDir,
			fmt.Sprintf("murmur-transcript-%s.txt", time.Now().Format("20060102-150405")))
		if err := m.deps.History.Export(path); err != nil {
			m.setStatus(errorStyle.Render(err.Error()))
		} else {
			m.setStatus("transcript saved to " + path)
		}
		return m, statusTimeoutCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit routes the typed text: recognized OS commands dispatch locally,
// everything else goes to the model.
func (m model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	m.deps.History.Append(chat.RoleUser, text)
	m.refreshTranscript()

	if cmd, ok := command.Extract(text); ok {
		m.state = stateThinking
		return m, tea.Batch(m.spinner.Tick, dispatchCmd(m.deps.Dispatcher, cmd))
	}

	m.state = stateThinking
	return m, tea.Batch(m.spinner.Tick, completeCmd(m.deps.Chat, m.deps.History.Window()))
}

func (m *model) setStatus(s string) {
	m.status = s
}

func (m *model) layout() {
	inputHeight := m.input.Height() + 1
	viewportHeight := m.height - inputHeight - 3 // status bar, help, status line
	if viewportHeight < 1 {
		viewportHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, viewportHeight)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = viewportHeight
	}
	m.input.SetWidth(m.width - 2)
}

// refreshTranscript re-renders the conversation into the viewport and
// follows the tail.
func (m *model) refreshTranscript() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m *model) renderTranscript() string {
	var b strings.Builder

	for _, msg := range m.deps.History.Messages() {
		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(userLabelStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(msg.Content)
		case chat.RoleAssistant:
			b.WriteString(assistantLabelStyle.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(msg.Content))
		case chat.RoleSystem:
			b.WriteString(systemLabelStyle.Render(msg.Content))
		}
		b.WriteString("\n\n")
	}

	return b.String()
}

func (m *model) renderMarkdown(content string) string {
	if !m.cfg.GlamourEnabled {
		return content
	}

	width := m.width
	if m.cfg.GlamourMaxWidth > 0 && width > int(m.cfg.GlamourMaxWidth) {
		width = int(m.cfg.GlamourMaxWidth)
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.cfg.GlamourStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorStyle.Render(m.fatalErr.Error()) + "\n"
	}
	if !m.ready {
		return "loading..."
	}

	if m.state == statePickingVoice {
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center, m.picker.View())
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.state == stateThinking {
		b.WriteString(m.spinner.View() + " thinking...")
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.status)
	} else {
		b.WriteString(helpStyle.Render(helpLine))
	}
	b.WriteString("\n")

	speaking := !m.cfg.NoSpeech && m.deps.Speaker.Speaking()
	var stored int64
	if m.deps.DiskStore != nil {
		stored = m.deps.DiskStore.StoredBytes()
	}
	b.WriteString(statusBar(m.width, m.deps.Speaker.Voice(), speaking,
		m.deps.Chat.Demo(), m.deps.Cache.Stats(), m.deps.Cache.Max(), stored))

	return b.String()
}
