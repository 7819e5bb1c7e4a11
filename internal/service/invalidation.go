package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// View names a rendered surface that depends on log or goals data.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewHistory   View = "history"
	ViewSettings  View = "settings"
)

// StaleViewsChannel is the Redis pub/sub channel for invalidation messages.
const StaleViewsChannel = "macrolog:views:stale"

// ViewInvalidator is told which views went stale after a successful mutation.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID, views ...View) error
}

// StaleViewsSubscriber streams invalidation messages for one user.
type StaleViewsSubscriber interface {
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan StaleViewsMessage, error)
}

// StaleViewsMessage is the payload published on StaleViewsChannel.
type StaleViewsMessage struct {
	UserID uuid.UUID `json:"user_id"`
	Views  []View    `json:"views"`
	At     time.Time `json:"at"`
}

// RedisInvalidator publishes invalidation messages over Redis pub/sub.
type RedisInvalidator struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisInvalidator(client *redis.Client) *RedisInvalidator {
	return &RedisInvalidator{client: client, now: time.Now}
}

func (r *RedisInvalidator) Invalidate(ctx context.Context, userID uuid.UUID, views ...View) error {
	payload, err := json.Marshal(StaleViewsMessage{
		UserID: userID,
		Views:  views,
		At:     r.now().UTC(),
	})
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, StaleViewsChannel, payload).Err()
}

// Subscribe returns messages addressed to userID until ctx is done.
func (r *RedisInvalidator) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan StaleViewsMessage, error) {
	sub := r.client.Subscribe(ctx, StaleViewsChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan StaleViewsMessage)
	go func() {
		defer close(out)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var msg StaleViewsMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil || msg.UserID != userID {
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// NoopInvalidator is used when Redis is unavailable.
type NoopInvalidator struct{}

func (NoopInvalidator) Invalidate(context.Context, uuid.UUID, ...View) error {
	return nil
}
