package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cscpp/internal/buildpipeline"
	"cscpp/internal/ui"
)

type pipelineOutcome struct {
	result *buildpipeline.Result
	err    error
}

func runPipelineWithUI(ctx context.Context, title string, files []string, req *buildpipeline.Request) (*buildpipeline.Result, error) {
	if req == nil {
		return nil, fmt.Errorf("missing pipeline request")
	}
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan pipelineOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Run(ctx, &reqCopy)
		outcomeCh <- pipelineOutcome{result: res, err: err}
		close(events)
	}()

	final := buildpipeline.StageCompile
	if req.Layout.Root != "" {
		final = buildpipeline.StageWrite
	}
	model := ui.NewProgressModel(title, files, final, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
