package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/database"
	"github.com/repotrack/backend/internal/models"
	"github.com/repotrack/backend/internal/roles"
	"github.com/repotrack/backend/internal/store"
)

// NotifyEvent is the payload broadcast over Redis and WebSocket when a
// notification is created.
type NotifyEvent struct {
	Kind          models.NotificationKind `json:"kind"`
	Title         string                  `json:"title"`
	Body          string                  `json:"body,omitempty"`
	RecipientID   string                  `json:"recipient_id,omitempty"`
	RecipientRole string                  `json:"recipient_role,omitempty"`
	Timestamp     time.Time               `json:"timestamp,omitempty"`
}

// NotifyConn is the minimal interface our WebSocket implementation must satisfy.
type NotifyConn interface {
	WriteJSON(v interface{}) error
	ReadJSON(dest interface{}) error
	Close() error
}

// notifyConnection tracks one user's WebSocket connection. Writes go through
// writeEvent: gorilla/websocket allows only one concurrent writer, and two
// overlapping events would otherwise race on WriteJSON.
type notifyConnection struct {
	UserID uuid.UUID
	Role   roles.Role
	Conn   NotifyConn

	writeMu sync.Mutex
}

func (nc *notifyConnection) writeEvent(event NotifyEvent) {
	nc.writeMu.Lock()
	defer nc.writeMu.Unlock()
	if err := nc.Conn.WriteJSON(event); err != nil {
		log.Printf("error writing notify event to websocket: %v", err)
	}
}

// NotifyHub is a global registry of user connections.
type NotifyHub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*notifyConnection
}

var (
	notifyHub     = &NotifyHub{connections: make(map[uuid.UUID]*notifyConnection)}
	notifyStarted sync.Once
)

// RegisterNotifyConnection registers or replaces a user's connection.
func RegisterNotifyConnection(userID uuid.UUID, role roles.Role, conn NotifyConn) {
	notifyHub.mu.Lock()
	notifyHub.connections[userID] = &notifyConnection{UserID: userID, Role: role, Conn: conn}
	notifyHub.mu.Unlock()
}

// UnregisterNotifyConnection removes a user's connection.
func UnregisterNotifyConnection(userID uuid.UUID) {
	notifyHub.mu.Lock()
	delete(notifyHub.connections, userID)
	notifyHub.mu.Unlock()
}

// FanOutNotifyEvent sends an event to every local connection it addresses:
// a specific recipient, everyone holding the recipient role, or everyone
// when both are empty.
func FanOutNotifyEvent(event NotifyEvent) {
	notifyHub.mu.RLock()
	defer notifyHub.mu.RUnlock()

	for _, nc := range notifyHub.connections {
		if event.RecipientID != "" && event.RecipientID != nc.UserID.String() {
			continue
		}
		if event.RecipientID == "" && event.RecipientRole != "" && event.RecipientRole != string(nc.Role) {
			continue
		}

		// Non-blocking best-effort send, serialized per connection.
		go nc.writeEvent(event)
	}
}

// StartRedisNotifySubscriber ensures a single shared Redis listener per instance.
func StartRedisNotifySubscriber(ctx context.Context) {
	notifyStarted.Do(func() {
		go runNotifySubscriber(ctx)
	})
}

func runNotifySubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		log.Println("Redis client not initialized; notify subscriber not started")
		return
	}

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		func() {
			pubsub := client.PSubscribe(ctx, "notify:*")
			defer pubsub.Close()

			log.Println("✅ Notify Redis subscriber started (pattern: notify:*)")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					log.Printf("Redis subscriber error: %v", err)
					time.Sleep(backoff)
					backoff *= 2
					if backoff > 30*time.Second {
						backoff = 30 * time.Second
					}
					return
				}

				backoff = time.Second

				var event NotifyEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("failed to unmarshal notify event: %v", err)
					continue
				}

				FanOutNotifyEvent(event)
			}
		}()
	}
}

// PublishNotifyEvent publishes an event to Redis so every instance fans it
// out to its local connections.
func PublishNotifyEvent(ctx context.Context, event NotifyEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return database.RedisClient.Publish(ctx, "notify:events", data).Err()
}

// Notifier persists notifications and pushes them to connected consoles.
type Notifier struct {
	notifications store.NotificationStore
}

func NewNotifier(notifications store.NotificationStore) *Notifier {
	return &Notifier{notifications: notifications}
}

// Send stores the notification and publishes it. Publish failures are
// logged, not returned: the stored record is the source of truth and the
// push is best effort.
func (n *Notifier) Send(ctx context.Context, notif models.Notification) error {
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = time.Now().UTC()
	}
	if err := n.notifications.Insert(ctx, &notif); err != nil {
		return err
	}

	event := NotifyEvent{
		Kind:          notif.Kind,
		Title:         notif.Title,
		Body:          notif.Body,
		RecipientID:   notif.RecipientID,
		RecipientRole: notif.RecipientRole,
		Timestamp:     notif.CreatedAt,
	}

	if err := PublishNotifyEvent(ctx, event); err != nil {
		log.Printf("failed to publish notification: %v", err)
	}
	return nil
}
