// Package alert notifies operators about failed traversals by email.
//
// FailureListener plugs into a monitor.Registry and forwards
// TraversalFailed events to an Alerter, at most once per interval.
package alert
