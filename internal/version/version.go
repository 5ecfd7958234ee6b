// Package version holds build metadata for the cscpp CLI.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

func palette(colored bool) [3]*color.Color {
	p := [3]*color.Color{
		color.New(color.FgYellow, color.Bold),
		color.New(color.FgGreen, color.Bold),
		color.New(color.FgBlue, color.Bold),
	}
	for _, c := range p {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Colored renders Version with major, minor and patch in their own colors.
// A suffix after the patch number, like "-dev", stays uncolored.
func Colored(colored bool) string {
	core, suffix := Version, ""
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core, suffix = core[:i], core[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	p := palette(colored)
	for i := range parts {
		parts[i] = p[i].Sprint(parts[i])
	}
	return strings.Join(parts, ".") + suffix
}

// Write prints the version line and whatever build metadata is set.
func Write(w io.Writer, colored bool) error {
	if _, err := fmt.Fprintf(w, "cscpp %s\n", Colored(colored)); err != nil {
		return err
	}
	lines := []struct{ label, value string }{
		{"commit", GitCommit},
		{"message", GitMessage},
		{"built", BuildDate},
	}
	for _, l := range lines {
		if l.value == "" {
			continue
		}
		if _, err := fmt.Fprintf(w, "  %-8s %s\n", l.label+":", l.value); err != nil {
			return err
		}
	}
	return nil
}
