package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cscpp/internal/diag"
	"cscpp/internal/frontend"
	"cscpp/internal/source"
	"cscpp/internal/syntax"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <file.cs>",
	Short: "Parse a C# file and dump its syntax tree",
	Long:  `Parse reads one C# file and writes its syntax tree as JSON, or as msgpack with --format msgpack`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

var (
	parseFormat string
	parseOutput string
)

func init() {
	parseCmd.Flags().StringVar(&parseFormat, "format", "json", "output format (json|msgpack)")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "write the tree to FILE instead of stdout")
}

func runParse(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(strings.TrimSpace(parseFormat))
	if format != "json" && format != "msgpack" {
		return fmt.Errorf("unknown format %q (must be json or msgpack)", parseFormat)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	fs := source.NewFileSet()
	id, err := fs.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	bag := diag.NewBag(maxDiagnostics)
	res := frontend.ParseFile(fs.Get(id), frontend.Options{Reporter: diag.BagReporter{Bag: bag}})
	if res.OK() {
		syntax.Validate(res.Tree, diag.BagReporter{Bag: bag})
	}
	wd, _ := os.Getwd()
	if err := renderDiagnostics(cmd, bag, fs, wd); err != nil {
		return err
	}
	if bag.HasErrors() {
		return errReported
	}

	var data []byte
	if format == "msgpack" {
		data, err = syntax.Encode(res.Tree)
	} else {
		data, err = syntax.Dump(res.Tree)
	}
	if err != nil {
		return err
	}
	if format == "json" {
		data = append(data, '\n')
	}
	if parseOutput != "" {
		// #nosec G306 -- tree dumps are not secret
		return os.WriteFile(parseOutput, data, 0o644)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
