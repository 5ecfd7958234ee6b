package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cscpp/internal/buildpipeline"
)

var translateCmd = &cobra.Command{
	Use:   "translate [flags] <file.cs>...",
	Short: "Translate C# sources to C++",
	Long: `Translate one or more C# files and write the C++ to stdout or to -o FILE.
With several files on stdout each unit is preceded by a // file: comment.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTranslate,
}

var (
	translateOpts   translateOptions
	translateOutput string
)

func init() {
	addTranslateFlags(translateCmd, &translateOpts)
	translateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "write the result to FILE (- for stdout)")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	flags, err := translateOpts.driverFlags(cmd)
	if err != nil {
		return err
	}
	toStdout := translateOutput == "" || translateOutput == "-"
	if len(args) > 1 && (!toStdout || translateOpts.archive) {
		return errors.New("-o and --archive take a single source; use build for projects")
	}
	cache, err := translateOpts.openCache()
	if err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}

	res, err := buildpipeline.Run(cmd.Context(), &buildpipeline.Request{
		Sources: args,
		BaseDir: wd,
		Flags:   flags,
		Jobs:    translateOpts.jobs,
		Cache:   cache,
	})
	if res != nil {
		if rerr := renderDiagnostics(cmd, res.Bag, res.FileSet, wd); rerr != nil {
			return rerr
		}
	}
	if err != nil {
		if res != nil && res.Bag.HasErrors() {
			return errReported
		}
		return err
	}

	if !toStdout {
		// #nosec G306 -- generated source is not secret
		if err := os.WriteFile(translateOutput, res.Units[0].Result.Output(), 0o644); err != nil {
			return fmt.Errorf("failed to write %q: %w", translateOutput, err)
		}
	} else if err := writeUnits(cmd.OutOrStdout(), res.Units); err != nil {
		return err
	}
	return reportTimings(cmd, res.Timings)
}

func writeUnits(w io.Writer, units []buildpipeline.UnitResult) error {
	for i, u := range units {
		if len(units) > 1 {
			sep := ""
			if i > 0 {
				sep = "\n"
			}
			if _, err := fmt.Fprintf(w, "%s// file: %s\n", sep, u.Source); err != nil {
				return err
			}
		}
		if _, err := w.Write(u.Result.Output()); err != nil {
			return err
		}
	}
	return nil
}

// reportTimings prints stage timings to stderr when --timings is set and
// --quiet is not.
func reportTimings(cmd *cobra.Command, timings buildpipeline.Timings) error {
	root := cmd.Root().PersistentFlags()
	show, err := root.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := root.GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if !show || quiet {
		return nil
	}
	return printStageTimings(cmd.ErrOrStderr(), timings)
}
