// Package command recognizes keyword-triggered OS automation in user
// input and executes it. Text that matches nothing falls through to the
// chat model.
package command

import "strings"

// Kind identifies the automation a command triggers.
type Kind int

const (
	KindOpenApp Kind = iota
	KindWebSearch
	KindScreenshot
	KindClipboard
)

func (k Kind) String() string {
	switch k {
	case KindOpenApp:
		return "open-app"
	case KindWebSearch:
		return "web-search"
	case KindScreenshot:
		return "screenshot"
	case KindClipboard:
		return "clipboard"
	default:
		return "unknown"
	}
}

// Command is one recognized automation request.
type Command struct {
	Kind Kind

	// Arg carries the target: application name, search query, or text to
	// copy. Empty for screenshot.
	Arg string
}

// trigger maps a leading phrase to a command kind.
type trigger struct {
	prefixes []string
	kind     Kind
}

var triggers = []trigger{
	{[]string{"open ", "launch ", "start "}, KindOpenApp},
	{[]string{"search for ", "search ", "google ", "look up "}, KindWebSearch},
	{[]string{"take a screenshot", "take screenshot", "screenshot"}, KindScreenshot},
	{[]string{"copy to clipboard ", "copy "}, KindClipboard},
}

// Extract recognizes a command in text. ok=false means the text is plain
// conversation.
func Extract(text string) (Command, bool) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	for _, tr := range triggers {
		for _, prefix := range tr.prefixes {
			if !strings.HasPrefix(lower, prefix) {
				continue
			}
			arg := strings.TrimSpace(trimmed[len(prefix):])
			if tr.kind == KindScreenshot {
				return Command{Kind: KindScreenshot}, true
			}
			if arg == "" {
				// "open" with no target is conversation, not a command.
				continue
			}
			return Command{Kind: tr.kind, Arg: arg}, true
		}
	}
	return Command{}, false
}
