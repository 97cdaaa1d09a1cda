package redis

import (
	"context"
	"encoding/json"
	"time"

	"academy-service/internal/app"
	"academy-service/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// notifyHistoryLimit caps the per-student backlog kept in Redis.
const notifyHistoryLimit = 100

// Notifier persists notifications to a per-student Redis list so feeds can
// be replayed after a reconnect. Best effort: a Redis failure is logged,
// never surfaced to the emitting operation.
type Notifier struct {
	client *redis.Client
	log    *logrus.Logger
	clock  func() time.Time
	newID  func() string
}

func NewNotifier(client *redis.Client, log *logrus.Logger) *Notifier {
	return &Notifier{
		client: client,
		log:    log,
		clock:  time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

var _ app.Notifier = (*Notifier)(nil)

func (n *Notifier) Emit(studentID, kind string, payload map[string]any) {
	notification := domain.Notification{
		ID:        n.newID(),
		StudentID: studentID,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: n.clock(),
	}
	data, err := json.Marshal(notification)
	if err != nil {
		n.log.WithError(err).Warn("notification marshal failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := n.key(studentID)
	pipe := n.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, notifyHistoryLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		n.log.WithError(err).WithField("student_id", studentID).Warn("notification publish failed")
	}
}

// History returns the most recent notifications for a student, newest first.
func (n *Notifier) History(ctx context.Context, studentID string, limit int64) ([]domain.Notification, error) {
	if limit <= 0 || limit > notifyHistoryLimit {
		limit = notifyHistoryLimit
	}
	raw, err := n.client.LRange(ctx, n.key(studentID), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Notification, 0, len(raw))
	for _, item := range raw {
		var notification domain.Notification
		if err := json.Unmarshal([]byte(item), &notification); err != nil {
			continue
		}
		out = append(out, notification)
	}
	return out, nil
}

func (n *Notifier) key(studentID string) string {
	return "notify:student:" + studentID
}
