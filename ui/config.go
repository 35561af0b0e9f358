package ui

// Config contains TUI-specific configuration.
type Config struct {
	HomeDir      string `env:"HOME"`
	GlamourStyle string `env:"GLAMOUR_STYLE"`

	GlamourMaxWidth uint
	EnableMouse     bool

	// NoSpeech disables the synthesis pipeline; replies are text only.
	NoSpeech bool

	// Voice is the preferred voice identifier for spoken replies.
	Voice string

	// For debugging the UI
	GlamourEnabled bool `env:"MURMUR_ENABLE_GLAMOUR" envDefault:"true"`
}
