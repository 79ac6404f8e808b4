package alert

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/soundprediction/graphwalk/pkg/config"
	"github.com/soundprediction/graphwalk/pkg/monitor"
	"golang.org/x/time/rate"
)

// Alerter defines an interface for sending alerts
type Alerter interface {
	Alert(subject, message string) error
}

// EmailAlerter implements Alerter using SMTP
type EmailAlerter struct {
	cfg config.AlertConfig
}

// NewEmailAlerter creates a new email alerter
func NewEmailAlerter(cfg config.AlertConfig) *EmailAlerter {
	return &EmailAlerter{
		cfg: cfg,
	}
}

// Alert sends an email with the given subject and message
func (a *EmailAlerter) Alert(subject, message string) error {
	if !a.cfg.Enabled {
		return nil
	}

	auth := smtp.PlainAuth("", a.cfg.Username, a.cfg.Password, a.cfg.SMTPHost)

	to := a.cfg.To
	msg := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"\r\n"+
		"%s\r\n", strings.Join(to, ","), subject, message))

	addr := fmt.Sprintf("%s:%d", a.cfg.SMTPHost, a.cfg.SMTPPort)

	err := smtp.SendMail(addr, auth, a.cfg.From, to, msg)
	if err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	return nil
}

// NoOpAlerter is a dummy alerter for when alerting is disabled
type NoOpAlerter struct{}

func (n *NoOpAlerter) Alert(subject, message string) error {
	return nil
}

// FailureListener sends an alert when a traversal fails. Alerts closer
// together than the configured interval are dropped.
type FailureListener struct {
	alerter Alerter
	limiter *rate.Limiter
}

// NewFailureListener creates a listener alerting through a at most once per
// minInterval. A zero interval sends every alert.
func NewFailureListener(a Alerter, minInterval time.Duration) *FailureListener {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &FailureListener{
		alerter: a,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Attach registers the listener for failed traversals.
func (l *FailureListener) Attach(reg *monitor.Registry, tags ...string) (detach func()) {
	return reg.Register(monitor.TraversalFailed, l, tags...)
}

// HandleEvent implements monitor.Listener.
func (l *FailureListener) HandleEvent(ctx context.Context, e monitor.Event) error {
	if e.Kind != monitor.TraversalFailed || !l.limiter.Allow() {
		return nil
	}

	subject := fmt.Sprintf("graphwalk traversal %s failed", e.ExecutionID)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Execution: %s\n", e.ExecutionID)
	fmt.Fprintf(&sb, "Error: %v\n", e.Err)
	fmt.Fprintf(&sb, "Order: %s\n", e.Attrs["order"])
	fmt.Fprintf(&sb, "Uniqueness: %s\n", e.Attrs["uniqueness"])
	fmt.Fprintf(&sb, "Start: %s\n", e.Attrs["start"])
	fmt.Fprintf(&sb, "Paths yielded: %d\n", e.Stats.PathsYielded)
	fmt.Fprintf(&sb, "Elapsed: %s\n", e.Elapsed)

	return l.alerter.Alert(subject, sb.String())
}
