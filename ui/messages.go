package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgnsrekt/murmur/internal/chat"
	"github.com/dgnsrekt/murmur/internal/command"
)

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// replyMsg carries an assistant reply back from the completion request.
type replyMsg struct {
	content string
}

// commandDoneMsg carries the confirmation of a dispatched OS command.
type commandDoneMsg struct {
	confirmation string
}

// statusTimeoutMsg clears a transient status line.
type statusTimeoutMsg struct{}

const requestTimeout = 60 * time.Second

// completeCmd asks the model for a reply to the conversation window.
func completeCmd(client *chat.Client, window []chat.Message) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		reply, err := client.Complete(ctx, window)
		if err != nil {
			return errMsg{err}
		}
		return replyMsg{content: reply}
	}
}

// dispatchCmd runs a recognized OS command.
func dispatchCmd(d *command.Dispatcher, cmd command.Command) tea.Cmd {
	return func() tea.Msg {
		confirmation, err := d.Dispatch(cmd)
		if err != nil {
			return errMsg{err}
		}
		return commandDoneMsg{confirmation: confirmation}
	}
}

func statusTimeoutCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return statusTimeoutMsg{}
	})
}
