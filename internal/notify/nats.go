package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const flushTimeout = 3 * time.Second

// NATSNotifier publishes escalations as JSON on prefix+congregation.
type NATSNotifier struct {
	conn   *nats.Conn
	prefix string
	log    *zap.Logger
}

// NewNATSNotifier connects to url. An empty prefix uses DefaultSubjectPrefix.
func NewNATSNotifier(url, prefix string, log *zap.Logger) (*NATSNotifier, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	nc, err := nats.Connect(url,
		nats.Name("discipulado"),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	log.Debug("nats connected", zap.String("url", nc.ConnectedUrlRedacted()))
	return &NATSNotifier{conn: nc, prefix: prefix, log: log}, nil
}

// NotifyEscalation publishes and flushes, so the message has left the
// process before a short-lived command exits.
func (n *NATSNotifier) NotifyEscalation(ctx context.Context, e Escalation) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding escalation: %w", err)
	}
	subject := n.Subject(e)
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publishing escalation: %w", err)
	}
	flushCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		flushCtx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := n.conn.FlushWithContext(flushCtx); err != nil {
		return fmt.Errorf("flushing escalation: %w", err)
	}
	n.log.Debug("escalation published", zap.String("subject", subject), zap.String("case_id", e.CaseID))
	return nil
}

// Subject is where e is published.
func (n *NATSNotifier) Subject(e Escalation) string {
	return n.prefix + e.CongregationID
}

func (n *NATSNotifier) Close() error {
	n.conn.Close()
	return nil
}
