package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/repotrack/backend/internal/models"
)

// ListFor and MarkRead match broadcasts with an equality filter on empty
// recipient fields. Mongo only satisfies that when the fields are stored, so
// a broadcast document must carry both keys even though they are empty.
func TestBroadcastNotificationStoresRecipientFields(t *testing.T) {
	n := models.Notification{
		Kind:      models.NotificationExcelImported,
		Title:     "Vehicle data imported",
		CreatedAt: time.Now(),
	}

	raw, err := bson.Marshal(n)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))

	id, ok := doc["recipient_id"]
	require.True(t, ok, "broadcast document must store recipient_id")
	assert.Equal(t, "", id)

	role, ok := doc["recipient_role"]
	require.True(t, ok, "broadcast document must store recipient_role")
	assert.Equal(t, "", role)
}

func TestNotificationReadStateResolvedPerUser(t *testing.T) {
	n := models.Notification{
		Kind:   models.NotificationStatusChanged,
		Title:  "Status updated",
		ReadBy: []string{"user-1"},
	}

	assert.True(t, n.ReadByUser("user-1"))
	assert.False(t, n.ReadByUser("user-2"))

	raw, err := bson.Marshal(n)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	_, hasRead := doc["read"]
	assert.False(t, hasRead, "read flags live in read_by, one per user")
}
