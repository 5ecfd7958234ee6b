package buildpipeline

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"cscpp/internal/driver"
)

// NormalizeProgressFiles returns sorted, de-duplicated display paths,
// relative to baseDir where the file lies under it.
func NormalizeProgressFiles(files []string, baseDir string) []string {
	if len(files) == 0 {
		return files
	}
	normalized := make([]string, 0, len(files))
	seen := make(map[string]struct{}, len(files))

	base := strings.TrimSpace(baseDir)
	if base != "" {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
	}

	for _, file := range files {
		if file == "" {
			continue
		}
		path := displayPath(file, base)
		if _, ok := seen[path]; ok {
			continue
		}
		seen[path] = struct{}{}
		normalized = append(normalized, path)
	}
	sort.Strings(normalized)
	return normalized
}

// displayPath expects an absolute base or "".
func displayPath(file, base string) string {
	path := filepath.Clean(file)
	if base != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if rel, err := filepath.Rel(base, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageLoad, Status: StatusQueued})
	}
}

// emitStage reports a stage-wide event, then the same status for each file.
func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}

func emitFile(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

// phaseObserver turns driver phase events into per-file compile progress.
// Units compile concurrently, so it locks around its state.
type phaseObserver struct {
	sink    ProgressSink
	display map[string]string // tree path -> display path
	next    driver.PhaseObserver

	mu      sync.Mutex
	started map[string]bool
}

func (p *phaseObserver) OnPhase(ev driver.PhaseEvent) {
	if p.next != nil {
		p.next(ev)
	}
	if p.sink == nil || ev.Status != driver.PhaseStart {
		return
	}
	p.mu.Lock()
	first := !p.started[ev.Path]
	p.started[ev.Path] = true
	p.mu.Unlock()
	if !first {
		return
	}
	file, ok := p.display[ev.Path]
	if !ok {
		file = ev.Path
	}
	emitFile(p.sink, file, StageCompile, StatusWorking, nil, 0)
}
