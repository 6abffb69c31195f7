package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes escalations to the log. It is the default when no
// broker is configured and the fallback when the broker is unreachable.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyEscalation(_ context.Context, e Escalation) error {
	fields := []zap.Field{
		zap.String("congregation", e.CongregationID),
		zap.String("case_id", e.CaseID),
		zap.String("from", string(e.From)),
		zap.String("to", string(e.To)),
		zap.Int("negative_contact_count", e.NegativeContactCount),
	}
	if e.DaysToConfra != nil {
		fields = append(fields, zap.Int("days_to_confra", *e.DaysToConfra))
	}
	if e.AssignedTo != "" {
		fields = append(fields, zap.String("assigned_to", e.AssignedTo))
	}
	n.log.Warn("case escalated", fields...)
	return nil
}

func (n *LogNotifier) Close() error { return nil }
