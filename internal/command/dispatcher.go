package command

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
)

// runner abstracts exec.Command so dispatch is testable without spawning
// processes.
type runner func(name string, args ...string) error

func execRunner(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Dispatcher executes recognized commands against the host OS.
type Dispatcher struct {
	goos   string
	run    runner
	logger *log.Logger
}

// NewDispatcher builds a dispatcher for the current platform.
func NewDispatcher(logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		goos:   runtime.GOOS,
		run:    execRunner,
		logger: logger,
	}
}

// Dispatch executes cmd and returns a short confirmation suitable for
// showing (and speaking) to the user.
func (d *Dispatcher) Dispatch(cmd Command) (string, error) {
	d.logger.Info("dispatching command", "kind", cmd.Kind, "arg", cmd.Arg)

	switch cmd.Kind {
	case KindOpenApp:
		if err := d.openApp(cmd.Arg); err != nil {
			return "", fmt.Errorf("failed to open %s: %w", cmd.Arg, err)
		}
		return fmt.Sprintf("Opening %s.", cmd.Arg), nil

	case KindWebSearch:
		if err := d.openURL(searchURL(cmd.Arg)); err != nil {
			return "", fmt.Errorf("failed to open search: %w", err)
		}
		return fmt.Sprintf("Searching the web for %s.", cmd.Arg), nil

	case KindScreenshot:
		path, err := d.screenshot()
		if err != nil {
			return "", fmt.Errorf("failed to take screenshot: %w", err)
		}
		return fmt.Sprintf("Screenshot saved to %s.", path), nil

	case KindClipboard:
		if err := clipboard.WriteAll(cmd.Arg); err != nil {
			return "", fmt.Errorf("failed to write clipboard: %w", err)
		}
		return "Copied to clipboard.", nil

	default:
		return "", fmt.Errorf("unknown command kind %d", cmd.Kind)
	}
}

func searchURL(query string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}

func (d *Dispatcher) openApp(name string) error {
	switch d.goos {
	case "darwin":
		return d.run("open", "-a", name)
	case "windows":
		return d.run("cmd", "/c", "start", "", name)
	default:
		return d.run(name)
	}
}

func (d *Dispatcher) openURL(u string) error {
	switch d.goos {
	case "darwin":
		return d.run("open", u)
	case "windows":
		return d.run("rundll32", "url.dll,FileProtocolHandler", u)
	default:
		return d.run("xdg-open", u)
	}
}

func (d *Dispatcher) screenshot() (string, error) {
	path := fmt.Sprintf("screenshot-%s.png", time.Now().Format("20060102-150405"))
	switch d.goos {
	case "darwin":
		return path, d.run("screencapture", path)
	case "windows":
		return "", fmt.Errorf("screenshots are not supported on windows")
	default:
		return path, d.run("scrot", path)
	}
}
