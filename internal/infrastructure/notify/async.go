package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/parceltrax/tracking-system/internal/api/metrics"
	"github.com/parceltrax/tracking-system/internal/core/ports"
)

const queueBuffer = 64

// notification is one queued delivery. The kind comes from the caller and is
// used only for metric labels.
type notification struct {
	kind    string
	message string
}

// AsyncNotifier decouples the refresh pipeline from channel delivery: Send
// only enqueues, a single worker goroutine drains the queue, and delivery
// failures are logged, counted and dropped. A full queue drops the message
// rather than stalling a refresh cycle.
type AsyncNotifier struct {
	sink  ports.Notifier
	queue chan notification
	log   zerolog.Logger
}

var _ ports.Notifier = (*AsyncNotifier)(nil)

// NewAsyncNotifier wraps sink. A nil sink disables delivery but keeps the
// pipeline's call sites uniform.
func NewAsyncNotifier(sink ports.Notifier, log zerolog.Logger) *AsyncNotifier {
	return &AsyncNotifier{
		sink:  sink,
		queue: make(chan notification, queueBuffer),
		log:   log,
	}
}

// Start launches the delivery worker. It stops when ctx is cancelled.
func (n *AsyncNotifier) Start(ctx context.Context) {
	go n.run(ctx)
}

// Send enqueues the message and returns immediately.
func (n *AsyncNotifier) Send(_ context.Context, kind, message string) error {
	select {
	case n.queue <- notification{kind: kind, message: message}:
	default:
		n.log.Warn().Str("kind", kind).Msg("notification queue full, message dropped")
		metrics.NotificationsTotal.WithLabelValues(kind, "failed").Inc()
	}
	return nil
}

func (n *AsyncNotifier) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case item := <-n.queue:
			if n.sink == nil {
				continue
			}
			if err := n.sink.Send(ctx, item.kind, item.message); err != nil {
				n.log.Warn().Err(err).Str("kind", item.kind).Msg("notification delivery failed")
				metrics.NotificationsTotal.WithLabelValues(item.kind, "failed").Inc()
				continue
			}
			metrics.NotificationsTotal.WithLabelValues(item.kind, "sent").Inc()
		}
	}
}
