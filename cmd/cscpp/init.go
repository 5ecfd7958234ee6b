package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cscpp/internal/backend/cpp"
	"cscpp/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new cscpp project",
	Long: `Initialize a new cscpp project by creating cscpp.toml and a hello-world
program (src/Program.cs). If [path|name] is omitted, initializes the current
directory. A missing directory is created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initProfile string

func init() {
	initCmd.Flags().StringVar(&initProfile, "profile", "hosted", "entry profile written to the manifest (hosted|device)")
}

func runInit(cmd *cobra.Command, args []string) error {
	profile, err := cpp.ParseProfile(initProfile)
	if err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	target := wd
	if len(args) > 0 && args[0] != "." {
		target = args[0]
		if !filepath.IsAbs(target) {
			target = filepath.Join(wd, target)
		}
	}

	res, err := project.Init(target, profile)
	if err != nil {
		if errors.Is(err, project.ErrAlreadyInitialized) {
			return fmt.Errorf("%w: %s exists", err, filepath.Join(target, project.ManifestName))
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "created %s\n", formatPathForOutput(wd, res.Manifest))
	if res.Sample != "" {
		fmt.Fprintf(out, "created %s\n", formatPathForOutput(wd, res.Sample))
	}
	return nil
}
