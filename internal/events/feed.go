package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent is the per-row change notification every store write emits.
// Row carries the post-image (or for deletes just the id) so subscribers
// can patch their cache without re-reading the whole table.
type ChangeEvent struct {
	Table string          `json:"table"`
	Type  ChangeType      `json:"type"`
	ID    string          `json:"id"`
	Row   json.RawMessage `json:"row,omitempty"`
}

type Unsubscribe func() error

// Feed is the table change-notification bus: publish on write, subscribe
// per table. NATS in production, an in-process fake in tests.
type Feed interface {
	Publish(ctx context.Context, ev ChangeEvent) error
	Subscribe(table string, fn func(ChangeEvent)) (Unsubscribe, error)
	Close()
}

type natsFeed struct {
	nc     *nats.Conn
	logger *zap.Logger
}

func Connect(natsURL string, connTimeout time.Duration, logger *zap.Logger) (Feed, error) {
	opts := []nats.Option{
		nats.Timeout(connTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	}

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	return &natsFeed{nc: nc, logger: logger}, nil
}

func subjectFor(table string) string {
	return "empleo." + table + ".changed"
}

func (f *natsFeed) Publish(_ context.Context, ev ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshaling change event: %w", err)
	}

	if err := f.nc.Publish(subjectFor(ev.Table), data); err != nil {
		f.logger.Error("failed to publish change event",
			zap.String("table", ev.Table),
			zap.String("type", string(ev.Type)),
			zap.Error(err))
		return fmt.Errorf("publishing change event: %w", err)
	}

	f.logger.Debug("published change event",
		zap.String("table", ev.Table),
		zap.String("type", string(ev.Type)),
		zap.String("id", ev.ID))
	return nil
}

// channelName tags one listener instance so its subscribe and unsubscribe
// log lines correlate when several caches watch the same table.
func channelName(table string) string {
	return fmt.Sprintf("%s-changes-%s", table, uuid.NewString()[:8])
}

func (f *natsFeed) Subscribe(table string, fn func(ChangeEvent)) (Unsubscribe, error) {
	channel := channelName(table)

	sub, err := f.nc.Subscribe(subjectFor(table), func(msg *nats.Msg) {
		var ev ChangeEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			f.logger.Warn("dropping malformed change event",
				zap.String("subject", msg.Subject),
				zap.Error(err))
			// Signal a resync with an empty payload so the subscriber
			// falls back to a full refetch.
			fn(ChangeEvent{Table: table})
			return
		}
		fn(ev)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", subjectFor(table), err)
	}

	f.logger.Info("subscribed to change feed",
		zap.String("table", table),
		zap.String("channel", channel))

	return func() error {
		f.logger.Info("unsubscribed from change feed",
			zap.String("table", table),
			zap.String("channel", channel))
		return sub.Unsubscribe()
	}, nil
}

func (f *natsFeed) Close() {
	if f.nc != nil {
		f.nc.Close()
	}
}
