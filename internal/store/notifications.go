package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/repotrack/backend/internal/models"
)

// NotificationStore persists the console's notification feed in MongoDB.
type NotificationStore interface {
	Insert(ctx context.Context, n *models.Notification) error
	// ListFor returns notifications visible to the user: addressed to their
	// id, their role, or broadcast. Read state is resolved per user.
	ListFor(ctx context.Context, userID, role string, page, limit int) ([]models.Notification, int, error)
	// MarkRead marks a notification read for one user. Notifications the
	// user is not a recipient of report ErrNotFound.
	MarkRead(ctx context.Context, id, userID, role string) error
}

type notificationStore struct {
	db *mongo.Database
}

// NewNotificationStore creates the Mongo-backed NotificationStore.
func NewNotificationStore(db *mongo.Database) NotificationStore {
	return &notificationStore{db: db}
}

func (s *notificationStore) coll() *mongo.Collection { return s.db.Collection("notifications") }

func (s *notificationStore) Insert(ctx context.Context, n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	res, err := s.coll().InsertOne(ctx, n)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = oid
	}
	return nil
}

func (s *notificationStore) ListFor(ctx context.Context, userID, role string, page, limit int) ([]models.Notification, int, error) {
	filter := bson.M{"$or": []bson.M{
		{"recipient_id": userID},
		{"recipient_role": role},
		{"recipient_id": "", "recipient_role": ""},
	}}

	total, err := s.coll().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	if limit < 1 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, fmt.Errorf("decode notifications: %w", err)
	}
	for i := range notifications {
		notifications[i].Read = notifications[i].ReadByUser(userID)
	}
	return notifications, int(total), nil
}

func (s *notificationStore) MarkRead(ctx context.Context, id, userID, role string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}

	// Scoped to the caller's recipient set so one user cannot mark another
	// user's notification, and each recipient of a role or broadcast
	// notification keeps their own read state.
	filter := bson.M{"_id": oid, "$or": []bson.M{
		{"recipient_id": userID},
		{"recipient_role": role},
		{"recipient_id": "", "recipient_role": ""},
	}}
	res, err := s.coll().UpdateOne(ctx, filter,
		bson.M{"$addToSet": bson.M{"read_by": userID}},
	)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
