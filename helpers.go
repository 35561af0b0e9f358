package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/murmur/internal/voice"
)

var (
	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "126", Dark: "213"})

	paragraphStyle = lipgloss.NewStyle().
			Width(78).
			Padding(0, 0, 1, 2)
)

// keyword renders a highlighted word for help text.
func keyword(s string) string {
	return keywordStyle.Render(s)
}

// paragraph wraps help text the way the TUI renders it.
func paragraph(s string) string {
	return paragraphStyle.Render(wordwrap.String(s, 76))
}

// expandPath expands a leading tilde in user-supplied paths.
func expandPath(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

// chooseResolver builds the fallback resolver, honoring a custom chain
// from the config file when one is set.
func chooseResolver(catalog *voice.Catalog) *voice.Resolver {
	chain := viper.GetStringSlice("fallback_chain")
	if len(chain) == 0 {
		chain = nil
	}
	return voice.NewResolver(catalog, chain)
}

// setupLog routes logs to a file when MURMUR_LOG is set, since stderr
// belongs to the TUI. Returns a closer for the log file.
func setupLog() (func() error, error) {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)

	path := os.Getenv("MURMUR_LOG")
	if path == "" {
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("could not create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("could not open log file: %w", err)
	}

	log.SetOutput(f)
	log.SetLevel(log.DebugLevel)
	return f.Close, nil
}
