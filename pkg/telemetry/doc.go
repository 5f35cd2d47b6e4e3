// Package telemetry provides logging, tracing and metrics for froyo-merge.
//
// Logging uses zerolog, tracing uses OpenTelemetry with stdout or OTLP/gRPC
// exporters, and metrics are Prometheus collectors on a private registry.
//
// # Usage
//
//	cfg := telemetry.DefaultConfig()
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	orch := merge.NewOrchestrator(dir,
//	    merge.WithLogger(tel.Logger.NewComponentLogger("merge-orchestrator").Zerolog()),
//	    merge.WithTracer(tel.Tracer),
//	    merge.WithRecorder(tel.Metrics),
//	)
//
// Packages take a plain zerolog.Logger; the component field comes from
// NewComponentLogger. Tracer satisfies merge.SpanStarter and
// plugin.HookTracer.
//
// Metrics implements merge.Recorder and plugin.Recorder. When metrics are
// disabled every Record call is a no-op, so callers never check.
//
// # Metrics
//
//   - froyo_merge_passes_total{mode,status}
//   - froyo_merge_pass_duration_seconds{mode}
//   - froyo_merge_satellite_files_total{outcome}
//   - froyo_merge_errors_total{kind}
//   - froyo_merge_followup_resolutions_total{status}
//
// The HTTP endpoint is only started by watch mode; one-shot commands exit
// before a scrape could happen.
package telemetry
