// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, hot reload, instrumentation and logging for the buffer layer.
//
// Provides:
//   - Config loading from defaults, file and HIOBUF_* environment
//   - Store with reload listeners, and file watching that feeds it
//   - Counters and PrometheusTracker implementing api.Tracker
//   - Gate for switching tracking kinds at runtime
//   - NewLogger for leveled logfmt output
package control
