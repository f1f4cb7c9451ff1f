// Package tracing provides OpenTelemetry tracing of audit ledger operations.
//
// Every append, retention cleanup, verification pass and compliance report
// runs in its own span. Spans carry the event type, level and outcome of an
// append, or the totals of a batch operation, and are exported over OTLP
// gRPC. Context propagation uses W3C Trace Context, so a caller that passes
// a traced context to the ledger sees the ledger's spans as children.
//
// # Sampling
//
// Three parent-based strategies are supported:
//   - always: sample every trace
//   - never: sample no trace
//   - ratio: sample a fraction of traces by trace ID
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	lcfg := ledger.FromConfig(cfg)
//	lcfg.Tracer = tracer
//
// A disabled configuration yields a noop tracer; a nil *Tracer is also
// valid and records nothing.
package tracing
