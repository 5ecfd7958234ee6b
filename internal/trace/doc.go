// Package trace records the translator's progress as begin/end spans.
//
// A Tracer travels through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeStage, "parse", 0)
//	defer span.End("")
//
// Scopes nest from coarse to fine: a CLI command (ScopeDriver) runs pipeline
// stages (ScopeStage), which compile individual units (ScopeUnit), which may
// report single constructs (ScopeNode). The Level picks how deep events go.
//
// StreamTracer writes events as they happen; RingTracer keeps the most recent
// ones in memory so a failed run can dump them afterwards.
package trace
