package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/paystack-payment-reconciler/internal/domain/notification"
)

const (
	// NotificationCollectionName is the name of the notification archive collection in MongoDB
	NotificationCollectionName = "notification_archive"
)

// NotificationRepository implements the notification.ArchiveRepository interface for MongoDB
type NotificationRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewNotificationRepository creates a new MongoDB notification archive repository
func NewNotificationRepository(logger *slog.Logger, db *mongo.Database) notification.ArchiveRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Archive stores a raw notification delivery. Deliveries are append-only, a
// redelivery of the same reference produces a second document.
func (r *NotificationRepository) Archive(ctx context.Context, n *notification.ArchivedNotification) error {
	collection := r.db.Collection(NotificationCollectionName)

	_, err := collection.InsertOne(ctx, n)
	if err != nil {
		r.logger.Error("Failed to archive notification",
			"reference", n.Reference,
			"error", err)
		return fmt.Errorf("failed to archive notification: %w", err)
	}

	return nil
}

// GetByReference retrieves archived deliveries for a processor reference.
// Results are sorted by receipt time in descending order (newest first).
func (r *NotificationRepository) GetByReference(ctx context.Context, reference string, limit, offset int) ([]*notification.ArchivedNotification, error) {
	collection := r.db.Collection(NotificationCollectionName)

	filter := bson.M{"reference": reference}
	opts := options.Find().
		SetSort(bson.M{"received_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get archived notifications",
			"reference", reference,
			"error", err)
		return nil, fmt.Errorf("failed to get archived notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var archived []*notification.ArchivedNotification
	if err := cursor.All(ctx, &archived); err != nil {
		r.logger.Error("Failed to decode archived notifications",
			"reference", reference,
			"error", err)
		return nil, fmt.Errorf("failed to decode archived notifications: %w", err)
	}

	return archived, nil
}

// CountByReference counts how many times a reference has been delivered
func (r *NotificationRepository) CountByReference(ctx context.Context, reference string) (int64, error) {
	collection := r.db.Collection(NotificationCollectionName)

	filter := bson.M{"reference": reference}
	count, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to count archived notifications",
			"reference", reference,
			"error", err)
		return 0, fmt.Errorf("failed to count archived notifications: %w", err)
	}

	return count, nil
}
