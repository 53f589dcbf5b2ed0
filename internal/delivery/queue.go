// Package delivery chứa queue và processor gửi message Messenger ở background.
package delivery

import (
	"context"
	"fmt"
	deliverymodels "pizza_commerce/internal/api/delivery/models"
	deliverysvc "pizza_commerce/internal/api/delivery/service"
	messengerdto "pizza_commerce/internal/api/messenger/dto"
	"pizza_commerce/internal/logger"
	"pizza_commerce/internal/utility"
)

// Queue xử lý việc enqueue message chờ gửi
type Queue struct {
	queueService *deliverysvc.DeliveryQueueService
	maxRetries   int
}

// NewQueue tạo mới Queue
func NewQueue(maxRetries int) (*Queue, error) {
	queueService, err := deliverysvc.NewDeliveryQueueService()
	if err != nil {
		return nil, fmt.Errorf("failed to create queue service: %w", err)
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Queue{
		queueService: queueService,
		maxRetries:   maxRetries,
	}, nil
}

// Enqueue thêm một message vào queue để processor gửi đi
func (q *Queue) Enqueue(ctx context.Context, recipientID string, text string, quickReplies []messengerdto.QuickReplyOption) error {
	log := logger.GetAppLogger()
	now := utility.CurrentTimeInMilli()

	item := deliverymodels.DeliveryQueueItem{
		RecipientID:  recipientID,
		MessageText:  text,
		QuickReplies: quickReplies,
		Status:       "pending",
		RetryCount:   0,
		MaxRetries:   q.maxRetries,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	inserted, err := q.queueService.InsertOne(ctx, item)
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"recipientId": recipientID,
		}).Error("📦 [DELIVERY] Lỗi khi insert queue item vào database")
		return err
	}

	log.WithFields(map[string]interface{}{
		"queueItemId": inserted.ID.Hex(),
		"recipientId": recipientID,
	}).Info("📦 [DELIVERY] Đã enqueue message")

	return nil
}
