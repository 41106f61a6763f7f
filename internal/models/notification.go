package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationKind string

const (
	NotificationVehicleAssigned NotificationKind = "vehicle_assigned"
	NotificationStatusChanged   NotificationKind = "status_changed"
	NotificationUserCreated     NotificationKind = "user_created"
	NotificationExcelImported   NotificationKind = "excel_imported"
)

// Notification is one entry of the console's notification feed. Recipient is
// either a specific user id or a role name; empty means broadcast. The
// recipient fields are stored even when empty: the store's broadcast filter
// matches on empty string, which a missing field would not satisfy.
type Notification struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind          NotificationKind   `bson:"kind" json:"kind"`
	Title         string             `bson:"title" json:"title"`
	Body          string             `bson:"body" json:"body"`
	RecipientID   string             `bson:"recipient_id" json:"recipient_id,omitempty"`
	RecipientRole string             `bson:"recipient_role" json:"recipient_role,omitempty"`
	// ReadBy tracks which users marked the notification read, so role and
	// broadcast notifications keep a read state per recipient.
	ReadBy    []string  `bson:"read_by,omitempty" json:"-"`
	Read      bool      `bson:"-" json:"read"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ReadByUser reports whether the user has marked the notification read.
func (n *Notification) ReadByUser(userID string) bool {
	for _, id := range n.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
