package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cscpp/internal/diag"
	"cscpp/internal/diagfmt"
	"cscpp/internal/source"
)

// renderDiagnostics writes bag to stderr in the --diag-format format. With
// --quiet only errors are shown.
func renderDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, baseDir string) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	root := cmd.Root().PersistentFlags()
	formatStr, err := root.GetString("diag-format")
	if err != nil {
		return fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	format, err := diagfmt.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	quiet, err := root.GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colorFlag, err := root.GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor, err := readColorMode(colorFlag, os.Stderr)
	if err != nil {
		return err
	}

	shown := bag
	if quiet {
		shown = onlyErrors(bag)
	}
	shown.Sort()
	out := cmd.ErrOrStderr()
	opts := diagfmt.PrettyOpts{
		Color:     useColor,
		Context:   2,
		BaseDir:   baseDir,
		ShowNotes: true,
	}
	if err := diagfmt.Render(out, format, shown, fs, opts); err != nil {
		return err
	}
	if format != diagfmt.FormatJSON && !quiet {
		if summary := diagfmt.Summary(shown); summary != "" {
			fmt.Fprintln(out, summary)
		}
	}
	return nil
}

func onlyErrors(bag *diag.Bag) *diag.Bag {
	out := diag.NewBag(bag.Len())
	for _, d := range bag.Items() {
		if d.Severity == diag.SevError {
			out.Add(d)
		}
	}
	return out
}
