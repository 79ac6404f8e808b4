// Package telemetry persists traversal summaries and error logs as Parquet
// files for offline analysis.
package telemetry
