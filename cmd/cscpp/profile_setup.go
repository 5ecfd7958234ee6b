package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cscpp/internal/prof"
)

var activeProf *prof.Session

// setupProfiling starts the runtime profilers named by the profiling flags.
func setupProfiling(cmd *cobra.Command) (*prof.Session, error) {
	root := cmd.Root().PersistentFlags()

	var cfg prof.Config
	var err error
	if cfg.CPU, err = root.GetString("cpu-profile"); err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if cfg.Mem, err = root.GetString("mem-profile"); err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cfg.Trace, err = root.GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !cfg.Enabled() {
		return nil, nil
	}
	return prof.Start(cfg)
}

func stopProfiling(cmd *cobra.Command) {
	sess := activeProf
	activeProf = nil
	if err := sess.Stop(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", err)
	}
}
