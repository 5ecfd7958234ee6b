// Package syntax holds the read-only tree the translator consumes.
//
// Nodes live in a flat slice addressed by 1-based NodeID. Kind is a closed
// set; Visitor has one method per kind and Dispatch is the only switch over
// it, so adding a kind is a compile error for every visitor until handled.
// Constructs the frontend recognises but cannot translate are kept as
// KindUnsupported nodes rather than dropped.
package syntax
