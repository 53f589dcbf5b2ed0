package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pizza_commerce/internal/logger"
)

// EnsureOrderIndexes tạo các index compound cho collection orders.
// "Đơn hàng mở gần nhất của một người" được tra cứu liên tục trong hội thoại,
// nên cần index (userData.recipientId, orderedAt desc) kèm status.
func EnsureOrderIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userData.recipientId", Value: 1},
				{Key: "orderedAt", Value: -1},
			},
			Options: options.Index().SetName("recipient_orderedAt"),
		},
		{
			Keys: bson.D{
				{Key: "userData.recipientId", Value: 1},
				{Key: "status", Value: 1},
				{Key: "orderedAt", Value: -1},
			},
			Options: options.Index().SetName("recipient_status_orderedAt"),
		},
	}

	for _, idx := range indexes {
		if _, err := collection.Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("không thể tạo index cho collection %s: %w", collection.Name(), err)
		}
	}

	logger.WithCollection(collection.Name()).Info("Ensured order indexes")
	return nil
}
