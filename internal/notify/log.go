package notify

import (
	"context"
	"log/slog"
	"strings"
)

// LogSink writes notifications to a structured logger. It is the sink used
// when no Redis stream is configured.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(ctx context.Context, n Notification) error {
	s.logger.InfoContext(ctx, "notification",
		"kind", string(n.Kind),
		"work_item_id", n.WorkItemID,
		"rule_id", n.RuleID,
		"severity", n.Severity,
		"recipients", strings.Join(n.Recipients, ","),
		"message", n.Message,
	)
	return nil
}
