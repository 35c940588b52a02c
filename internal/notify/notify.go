// Package notify dispatches templated notification events.
//
// Dispatch is fire-and-forget: failures are logged and never propagated to
// the triggering request. The Redis implementation publishes events for the
// mail worker to consume; handlers and services only see the Dispatcher
// interface.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Event type names, one per mail template.
const (
	EventWelcome                 = "EVENT_WELCOME"
	EventApplicationConfirmation = "EVENT_APPLICATION_CONFIRMATION"
	EventApplicationStatusUpdate = "EVENT_APPLICATION_STATUS_UPDATE"
	EventNewApplication          = "EVENT_NEW_APPLICATION"
	EventRMServicePurchase       = "EVENT_RM_SERVICE_PURCHASE"
	EventPasswordReset           = "EVENT_PASSWORD_RESET"
	EventReferralInvite          = "EVENT_REFERRAL_INVITE"
)

// Event is a templated message keyed by recipient address and a small set of
// named parameters.
type Event struct {
	Type      string            `json:"type"`
	Recipient string            `json:"recipient"`
	Params    map[string]string `json:"params,omitempty"`
}

// Dispatcher sends notification events.
type Dispatcher interface {
	Dispatch(ctx context.Context, e Event)
}

// RedisDispatcher publishes events to a Redis channel.
type RedisDispatcher struct {
	rdb     *redis.Client
	channel string
}

// NewRedisDispatcher returns a Dispatcher publishing to the given channel.
func NewRedisDispatcher(rdb *redis.Client, channel string) *RedisDispatcher {
	return &RedisDispatcher{rdb: rdb, channel: channel}
}

// Dispatch publishes e. Failures are logged, never returned.
func (d *RedisDispatcher) Dispatch(ctx context.Context, e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		slog.Warn("notify: marshal event failed", "type", e.Type, "err", err)
		return
	}
	if err := d.rdb.Publish(ctx, d.channel, payload).Err(); err != nil {
		slog.Warn("notify: publish failed", "type", e.Type, "recipient", e.Recipient, "err", err)
	}
}

// NopDispatcher discards all events. Used in tests.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(context.Context, Event) {}
