package client

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to shell output.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...any) string {
	text := fmt.Sprint(a...)
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...any) string {
	return f.Sprint(fmt.Sprintf(format, a...))
}

// noColor returns true if color output should be disabled.
func noColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

var (
	// Success is green.
	Success = Formatter{color.New(color.FgGreen), "", ""}
	// Error is red.
	Error = Formatter{color.New(color.FgRed), "", ""}
	// Warning is yellow.
	Warning = Formatter{color.New(color.FgYellow), "", ""}
	// Info is cyan.
	Info = Formatter{color.New(color.FgCyan), "", ""}
	// Muted is for ids and timestamps.
	Muted = Formatter{color.New(color.Faint), "", ""}
	// Danger marks countdowns about to run out. Bold red with color, !! without.
	Danger = Formatter{color.New(color.FgRed, color.Bold), "!! ", ""}
	// Badge marks burn-after-view secrets. Magenta with color, brackets without.
	Badge = Formatter{color.New(color.FgMagenta), "[", "]"}
)

// progressWidth is the number of cells in a countdown bar.
const progressWidth = 20

// progressBar renders pct (0..100) as a fixed-width bar.
func progressBar(pct float64) string {
	filled := int(pct/100*progressWidth + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > progressWidth {
		filled = progressWidth
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", progressWidth-filled) + "]"
}
