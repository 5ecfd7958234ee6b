package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cscpp/internal/trace"
)

type traceSession struct {
	tracer trace.Tracer
	ring   *trace.RingTracer
	root   *trace.Span
	output string
	format trace.Format
	errOut io.Writer
}

var activeTrace *traceSession

// startSession starts the profilers, attaches a tracer to the command context
// and opens the driver span.
func startSession(cmd *cobra.Command, _ []string) error {
	ps, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	activeProf = ps
	sess, err := setupTracing(cmd)
	if err != nil {
		stopProfiling(cmd)
		return err
	}
	activeTrace = sess
	return nil
}

func setupTracing(cmd *cobra.Command) (*traceSession, error) {
	root := cmd.Root()

	output, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	formatStr, err := root.PersistentFlags().GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	verbose, err := root.PersistentFlags().GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	if verbose && level == trace.LevelOff {
		level = trace.LevelDetail
		if output == "" {
			output = "-"
		}
	}
	// the root context is fresh per execution; a subcommand's may be stale
	base := root.Context()
	if level == trace.LevelOff && output == "" {
		cmd.SetContext(trace.WithTracer(base, trace.Nop))
		return nil, nil
	}
	// an output without a level means the coarse phase trace
	if level == trace.LevelOff {
		level = trace.LevelPhase
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}

	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: output,
		RingSize:   ringSize,
	}
	if output == "" || output == "-" {
		// hide Close so the tracer never closes stderr
		cfg.Output = struct{ io.Writer }{cmd.ErrOrStderr()}
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	sess := &traceSession{tracer: tracer, output: output, format: format, errOut: cmd.ErrOrStderr()}
	if ring, ok := tracer.(*trace.RingTracer); ok {
		sess.ring = ring
	}

	ctx := trace.WithTracer(base, tracer)
	sess.root, ctx = trace.Start(ctx, trace.ScopeDriver, cmd.CommandPath())
	cmd.SetContext(ctx)
	return sess, nil
}

// finishSession stops the profilers, then closes the driver span and the
// tracer. A ring tracer is dumped only when the command failed.
func finishSession(failed bool) {
	stopProfiling(rootCmd)
	sess := activeTrace
	activeTrace = nil
	if sess == nil {
		return
	}
	detail := ""
	if failed {
		detail = "failed"
	}
	sess.root.End(detail)
	if sess.ring != nil && failed {
		if err := sess.dumpRing(); err != nil {
			fmt.Fprintf(sess.errOut, "trace: dump error: %v\n", err)
		}
	}
	if err := sess.tracer.Flush(); err != nil {
		fmt.Fprintf(sess.errOut, "trace: flush error: %v\n", err)
	}
	if err := sess.tracer.Close(); err != nil {
		fmt.Fprintf(sess.errOut, "trace: close error: %v\n", err)
	}
}

func (s *traceSession) dumpRing() error {
	if s.output == "" || s.output == "-" {
		return s.ring.Dump(s.errOut, s.format)
	}
	f, err := os.Create(s.output)
	if err != nil {
		return err
	}
	if err := s.ring.Dump(f, s.format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
