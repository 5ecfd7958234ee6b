package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"cscpp/internal/backend/cpp"
	"cscpp/internal/buildpipeline"
	"cscpp/internal/diag"
	"cscpp/internal/driver"
	"cscpp/internal/project"
	"cscpp/internal/source"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path]",
	Short: "Translate a cscpp project",
	Long: `Build reads cscpp.toml (searching upward from path) and writes the outputs:
  hosted:  <dir>/src/program.cpp
  device:  <dir>/arduino/program/program.ino
  archive: <dir>/out/out.cu
Projects with several sources name each output after its source file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: buildExecution,
}

var (
	buildArchive bool
	buildJobs    int
	buildCache   bool
	buildUI      string
)

func init() {
	buildCmd.Flags().BoolVar(&buildArchive, "archive", false, "serialize syntax trees instead of generating C++")
	buildCmd.Flags().IntVar(&buildJobs, "jobs", 0, "max parallel workers (0=auto)")
	buildCmd.Flags().BoolVar(&buildCache, "cache", false, "reuse outputs from the on-disk cache")
	buildCmd.Flags().StringVar(&buildUI, "ui", "auto", "user interface (auto|on|off)")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	uiModeValue, err := readUIMode(buildUI)
	if err != nil {
		return err
	}
	startDir := "."
	if len(args) > 0 && args[0] != "" {
		startDir = args[0]
	}

	manifest, err := project.Load(startDir)
	if err != nil {
		var perr *project.Error
		if errors.As(err, &perr) {
			bag := diag.NewBag(1)
			bag.Add(diag.NewError(perr.Code, source.Span{}, perr.Error()))
			if rerr := renderDiagnostics(cmd, bag, nil, ""); rerr != nil {
				return rerr
			}
			return errReported
		}
		return err
	}

	flags, err := manifestFlags(cmd, manifest)
	if err != nil {
		return err
	}
	opts := translateOptions{cache: buildCache}
	cache, err := opts.openCache()
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	req := &buildpipeline.Request{
		Sources: manifest.SourcePaths(),
		BaseDir: manifest.Root,
		Flags:   flags,
		Jobs:    buildJobs,
		Cache:   cache,
		Layout: buildpipeline.Layout{
			Root:    manifest.OutputDir(),
			Profile: flags.Profile(),
			Archive: buildArchive,
		},
	}

	var res *buildpipeline.Result
	if shouldUseTUI(uiModeValue) && !quiet {
		files := buildpipeline.NormalizeProgressFiles(req.Sources, manifest.Root)
		res, err = runPipelineWithUI(cmd.Context(), "cscpp build "+manifest.Config.Package.Name, files, req)
	} else {
		res, err = buildpipeline.Run(cmd.Context(), req)
	}
	if res != nil {
		if rerr := renderDiagnostics(cmd, res.Bag, res.FileSet, manifest.Root); rerr != nil {
			return rerr
		}
	}
	if err != nil {
		if res != nil && res.Bag.HasErrors() {
			return errReported
		}
		return err
	}

	if !quiet {
		for _, u := range res.Units {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", formatPathForOutput(manifest.Root, u.Output)); err != nil {
				return err
			}
		}
	}
	return reportTimings(cmd, res.Timings)
}

// manifestFlags maps [translate] onto driver flags; --archive and the global
// flags come from the command line.
func manifestFlags(cmd *cobra.Command, m *project.Manifest) (driver.Flags, error) {
	flags := driver.Flags{
		GenerateOutput: !buildArchive,
		DeviceProfile:  m.Profile() == cpp.ProfileDevice,
		Entry:          m.Entry(),
		Options: cpp.Options{
			Compact: !m.Pretty(),
			CRLF:    m.Config.Translate.CRLF,
		},
	}
	if m.CommentFallback() {
		flags.Options.Fallback = cpp.CommentFallback
	}
	var err error
	root := cmd.Root().PersistentFlags()
	if flags.MaxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
		return flags, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if flags.Timings, err = root.GetBool("timings"); err != nil {
		return flags, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return flags, nil
}

func formatPathForOutput(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	if strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
