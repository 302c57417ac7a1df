package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/citypulse/backend/internal/logger"
	"github.com/citypulse/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

// NotificationEvent is the payload pushed to the notification side-channel.
type NotificationEvent struct {
	ComplaintID uint              `json:"complaintId"`
	Department  models.Department `json:"department"`
	Type        string            `json:"type"`
	Message     string            `json:"message"`
}

// Notifier is fire-and-forget: delivery failure is logged and never rolls
// back the state change that triggered it.
type Notifier interface {
	Publish(event NotificationEvent)
}

// RedisNotifier publishes events on a per-department redis channel that
// delivery workers (email/OTP senders, dashboards) subscribe to.
type RedisNotifier struct {
	rdb *redis.Client
	ctx context.Context
}

func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{
		rdb: rdb,
		ctx: context.Background(),
	}
}

func (n *RedisNotifier) Publish(event NotificationEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode notification", map[string]interface{}{
			"complaint_id": event.ComplaintID,
			"error":        err.Error(),
		})
		return
	}

	channel := fmt.Sprintf("notifications:%s", event.Department)
	if err := n.rdb.Publish(n.ctx, channel, payload).Err(); err != nil {
		logger.Warn("Notification delivery failed", map[string]interface{}{
			"channel":      channel,
			"complaint_id": event.ComplaintID,
			"error":        err.Error(),
		})
	}
}

// NoopNotifier drops every event. Used when redis is not configured and in
// tests.
type NoopNotifier struct{}

func (NoopNotifier) Publish(NotificationEvent) {}
