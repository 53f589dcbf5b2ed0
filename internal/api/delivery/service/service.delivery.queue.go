// Package deliverysvc chứa service data access cho domain Delivery (queue, history).
// Nằm trong folder service/ để đối xứng với dto/, handler/. Base service (BaseServiceMongoImpl) ở api/basesvc.
// File: service.delivery.queue.go - giữ tên cấu trúc cũ (service.<domain>.<entity>.go).
package deliverysvc

import (
	"context"
	"fmt"

	basesvc "pizza_commerce/internal/api/base/service"
	deliverymodels "pizza_commerce/internal/api/delivery/models"
	"pizza_commerce/internal/common"
	"pizza_commerce/internal/global"
	"pizza_commerce/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DeliveryQueueService là service quản lý Delivery Queue (enqueue, dequeue, pending, status).
type DeliveryQueueService struct {
	*basesvc.BaseServiceMongoImpl[deliverymodels.DeliveryQueueItem]
}

// NewDeliveryQueueService tạo mới DeliveryQueueService
func NewDeliveryQueueService() (*DeliveryQueueService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.DeliveryQueue)
	if !exist {
		return nil, fmt.Errorf("failed to get delivery_queue collection: %v", common.ErrNotFound)
	}

	return &DeliveryQueueService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[deliverymodels.DeliveryQueueItem](collection),
	}, nil
}

// FindPending tìm các items có status="pending" hoặc "processing" quá lâu (stale)
func (s *DeliveryQueueService) FindPending(ctx context.Context, limit int) ([]deliverymodels.DeliveryQueueItem, error) {
	now := utility.CurrentTimeInMilli()
	staleThreshold := now - 5*60*1000 // 5 phút trước

	filter := bson.M{
		"$and": []bson.M{
			{
				"$or": []bson.M{
					{"status": "pending"},
					{
						"status":    "processing",
						"updatedAt": bson.M{"$lt": staleThreshold},
					},
				},
			},
			{
				"$or": []bson.M{
					{"nextRetryAt": nil},
					{"nextRetryAt": bson.M{"$lte": now}},
				},
			},
		},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := s.Collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []deliverymodels.DeliveryQueueItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus cập nhật status cho nhiều items
func (s *DeliveryQueueService) UpdateStatus(ctx context.Context, ids []interface{}, status string) error {
	filter := bson.M{"_id": bson.M{"$in": ids}}
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": utility.CurrentTimeInMilli()}}
	_, err := s.Collection().UpdateMany(ctx, filter, update)
	return err
}

// CleanupFailedItems xóa các items failed đã quá N ngày
func (s *DeliveryQueueService) CleanupFailedItems(ctx context.Context, daysOld int) (int64, error) {
	cutoffTime := utility.CurrentTimeInMilli() - int64(daysOld)*24*60*60*1000
	filter := bson.M{
		"status":    "failed",
		"updatedAt": bson.M{"$lt": cutoffTime},
	}
	result, err := s.Collection().DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// FindStuckItems tìm các items bị kẹt (processing quá lâu hoặc thiếu người nhận)
func (s *DeliveryQueueService) FindStuckItems(ctx context.Context, staleMinutes int, limit int) ([]deliverymodels.DeliveryQueueItem, error) {
	now := utility.CurrentTimeInMilli()
	staleThreshold := now - int64(staleMinutes)*60*1000
	filter := bson.M{
		"$or": []bson.M{
			{
				"status":    "processing",
				"updatedAt": bson.M{"$lt": staleThreshold},
			},
			{"recipientId": ""},
		},
	}
	opts := options.Find().SetSort(bson.M{"updatedAt": 1}).SetLimit(int64(limit))
	cursor, err := s.Collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var items []deliverymodels.DeliveryQueueItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
