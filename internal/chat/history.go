// Package chat talks to a hosted chat-completion API and keeps the
// conversation transcript.
package chat

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one transcript entry.
type Message struct {
	ID      string
	Role    Role
	Content string
	Time    time.Time
}

// contextWindow is how many recent messages are sent as model context.
const contextWindow = 5

// History is the session transcript. The full transcript is kept for
// display and export; only the most recent contextWindow messages are
// handed to the model.
type History struct {
	mu       sync.Mutex
	messages []Message
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append records a message and returns it with its assigned id.
func (h *History) Append(role Role, content string) Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := Message{
		ID:      uuid.NewString(),
		Role:    role,
		Content: content,
		Time:    time.Now(),
	}
	h.messages = append(h.messages, msg)
	return msg
}

// Messages returns a copy of the full transcript.
func (h *History) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Window returns the most recent messages to send as model context.
func (h *History) Window() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := len(h.messages) - contextWindow
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(h.messages)-start)
	copy(out, h.messages[start:])
	return out
}

// Last returns the most recent message with the given role.
func (h *History) Last(role Role) (Message, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := len(h.messages) - 1; i >= 0; i-- {
		if h.messages[i].Role == role {
			return h.messages[i], true
		}
	}
	return Message{}, false
}

// Len returns the transcript length.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.messages)
}

// Clear empties the transcript.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = nil
}

// Export writes the transcript to path as plain text.
func (h *History) Export(path string) error {
	var b strings.Builder
	for _, m := range h.Messages() {
		fmt.Fprintf(&b, "[%s] %s: %s\n",
			m.Time.Format("2006-01-02 15:04:05"), m.Role, m.Content)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to export transcript: %w", err)
	}
	return nil
}
