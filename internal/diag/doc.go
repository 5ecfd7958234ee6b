// Package diag defines the diagnostic model shared by the frontend, the
// translator and the CLI.
//
// A Diagnostic carries a Severity, a numeric Code with a stable string form
// (LEX/SYN/GEN/IO/PRJ/OBS ranges, see codes.go), a message, a primary span and
// optional notes. Producers emit through a Reporter; BagReporter collects into
// a Bag which supports sorting and deduplication.
//
// Package diag performs no IO and no terminal formatting. Rendering lives in
// internal/diagfmt.
package diag
