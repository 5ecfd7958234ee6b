package driver

import "time"

// PhaseStatus reports whether a phase started or finished.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent describes a phase boundary inside Compile.
type PhaseEvent struct {
	Path    string
	Name    string // validate, render, entry, archive
	Status  PhaseStatus
	Elapsed time.Duration // set on PhaseEnd
}

// PhaseObserver receives phase events. Batch compilations call it from
// several goroutines.
type PhaseObserver func(PhaseEvent)
