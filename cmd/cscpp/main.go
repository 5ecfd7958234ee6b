// Command cscpp translates a subset of C# into C++ source.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cscpp/internal/version"
)

// errReported means the failure was already shown as diagnostics.
var errReported = errors.New("failed")

var rootCmd = &cobra.Command{
	Use:               "cscpp",
	Short:             "C# to C++ source translator",
	Long:              `cscpp translates a subset of C# (namespaces, classes, static methods, calls) into C++ for hosted and Arduino-style targets`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: startSession,
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (code int) {
	rootCmd.Version = version.Version
	rootCmd.SetArgs(args)

	defer func() {
		if r := recover(); r != nil {
			// сначала сбрасываем ring-буфер, потом паникуем дальше
			finishSession(true)
			panic(r)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	finishSession(err != nil)
	if err == nil {
		return 0
	}
	if !errors.Is(err, errReported) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "error: %v\n", err)
	}
	return 1
}

func init() {
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.BoolP("verbose", "v", false, "trace units to stderr (same as --trace-level detail)")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to collect")
	flags.String("diag-format", "pretty", "diagnostics format (pretty|short|json)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|phase|detail|debug)")
	flags.String("trace-format", "text", "trace format (text|ndjson)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring); ring dumps on failure")
	flags.Int("trace-ring-size", 0, "events kept in ring mode (0=default)")
	flags.String("cpu-profile", "", "write a CPU profile to FILE")
	flags.String("mem-profile", "", "write a heap profile to FILE on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to FILE")
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd())) // #nosec G115 -- file descriptors fit in int
}
