// Package metrics exports sync, HTTP and cache events as Prometheus metrics.
//
// A [Recorder] implements the observability hook interfaces. Register it at
// startup and, because sync runs are short-lived, write the registry to a
// node_exporter textfile when the run ends:
//
//	rec := metrics.NewRecorder(nil)
//	rec.Register()
//	defer rec.WriteTextfile("/var/lib/node_exporter/modmirror.prom")
package metrics
