package chat

import "strings"

// demoReplies maps keywords to canned responses used when no API key is
// configured, so the app stays usable offline.
var demoReplies = []struct {
	keywords []string
	reply    string
}{
	{
		keywords: []string{"hello", "hi", "hey"},
		reply:    "Hello! I'm running in demo mode without an API key, but I'm happy to chat.",
	},
	{
		keywords: []string{"how are you"},
		reply:    "Doing great, thanks for asking. How can I help?",
	},
	{
		keywords: []string{"your name", "who are you"},
		reply:    "I'm Murmur, a terminal voice assistant.",
	},
	{
		keywords: []string{"time"},
		reply:    "I can't check the clock in demo mode, but your status bar probably can.",
	},
	{
		keywords: []string{"weather"},
		reply:    "No network access in demo mode, so I can't fetch the weather. Try a web search command instead.",
	},
	{
		keywords: []string{"thank"},
		reply:    "You're welcome!",
	},
	{
		keywords: []string{"bye", "goodbye"},
		reply:    "Goodbye! Talk to you later.",
	},
}

const demoDefault = "I'm in demo mode without an API key, so my answers are limited. Set GITHUB_TOKEN to enable real completions."

// demoReply picks a canned response for the prompt.
func demoReply(prompt string) string {
	lower := strings.ToLower(prompt)
	for _, entry := range demoReplies {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.reply
			}
		}
	}
	return demoDefault
}
