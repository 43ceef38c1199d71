// Package service contains application services.
package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Strob0t/CodeForge/internal/port/messagequeue"
	"github.com/Strob0t/CodeForge/internal/port/notifier"
)

// NotificationService dispatches notifications to all registered notifiers
// and, when a message queue is configured, fans out persisted Alerts
// best-effort to a JetStream subject (spec.md §4.14).
type NotificationService struct {
	notifiers     []notifier.Notifier
	enabledEvents map[string]bool
	queue         messagequeue.Queue
}

// NewNotificationService creates a NotificationService with the given notifiers
// and list of enabled event types (e.g., "run.completed", "run.failed").
// If enabledEvents is nil or empty, all events are enabled.
func NewNotificationService(notifiers []notifier.Notifier, enabledEvents []string) *NotificationService {
	enabled := make(map[string]bool, len(enabledEvents))
	for _, e := range enabledEvents {
		enabled[e] = true
	}
	return &NotificationService{
		notifiers:     notifiers,
		enabledEvents: enabled,
	}
}

// SetQueue attaches a message queue for alert fanout. Nil disables it.
func (s *NotificationService) SetQueue(q messagequeue.Queue) {
	s.queue = q
}

// PublishAlert fans out a persisted Alert to bencher.alerts.{project_id}.
// This is explicitly a local-recovery-only path (spec.md §7): publish
// failure is logged and never propagated to the ingestion caller.
func (s *NotificationService) PublishAlert(ctx context.Context, payload messagequeue.AlertPayload) {
	if s.queue == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("alert payload marshal failed", "alert_id", payload.AlertID, "error", err)
		return
	}
	subject := messagequeue.SubjectAlertCreated + "." + payload.ProjectID
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Warn("alert publish failed", "alert_id", payload.AlertID, "subject", subject, "error", err)
	}
}

// Notify sends a notification to all registered notifiers.
// Errors are logged but do not interrupt delivery to other notifiers.
func (s *NotificationService) Notify(ctx context.Context, n notifier.Notification) {
	if len(s.enabledEvents) > 0 && !s.enabledEvents[n.Source] {
		return
	}

	for _, provider := range s.notifiers {
		if err := provider.Send(ctx, n); err != nil {
			slog.Warn("notification send failed",
				"provider", provider.Name(),
				"title", n.Title,
				"error", err,
			)
			continue
		}
		slog.Debug("notification sent", "provider", provider.Name(), "title", n.Title)
	}
}

// NotifierCount returns the number of registered notifiers.
func (s *NotificationService) NotifierCount() int {
	return len(s.notifiers)
}
