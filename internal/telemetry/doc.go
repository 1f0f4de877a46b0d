// Package telemetry provides prometheus metrics and OpenTelemetry spans for
// lifecycle operations.
//
// u2a is a short-lived CLI, so metrics are not served over HTTP. Instead
// they are flushed to ~/.u2a/metrics.prom after every command, where a node
// exporter textfile collector can pick them up.
//
//	m := telemetry.NewMetrics()
//	start := time.Now()
//	err := doCreate()
//	m.ObserveOperation("create", start, err)
//	_ = m.WriteFile(cfg.MetricsPath)
//
// Spans use the global tracer provider and are no-ops unless the embedding
// program installs one.
package telemetry
