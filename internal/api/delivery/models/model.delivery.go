// Package models - DeliveryQueueItem và DeliveryHistory thuộc domain Delivery.
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	messengerdto "pizza_commerce/internal/api/messenger/dto"
)

// DeliveryQueueItem - một message chờ gửi qua Messenger Send API
type DeliveryQueueItem struct {
	ID           primitive.ObjectID              `json:"id,omitempty" bson:"_id,omitempty"`
	RecipientID  string                          `json:"recipientId" bson:"recipientId" index:"single:1"` // PSID người nhận
	MessageText  string                          `json:"messageText" bson:"messageText"`                  // Nội dung text gửi đi
	QuickReplies []messengerdto.QuickReplyOption `json:"quickReplies,omitempty" bson:"quickReplies,omitempty"`
	Status       string                          `json:"status" bson:"status" index:"single:1"` // pending, processing, failed
	RetryCount   int                             `json:"retryCount" bson:"retryCount"`
	MaxRetries   int                             `json:"maxRetries" bson:"maxRetries"`
	NextRetryAt  *int64                          `json:"nextRetryAt,omitempty" bson:"nextRetryAt,omitempty"` // Unix ms, nil = gửi ngay
	Error        string                          `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt    int64                           `json:"createdAt" bson:"createdAt"`
	UpdatedAt    int64                           `json:"updatedAt" bson:"updatedAt"`
}

// DeliveryHistory - Lịch sử gửi message (thuộc Delivery System)
type DeliveryHistory struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	QueueItemID primitive.ObjectID `json:"queueItemId" bson:"queueItemId" index:"single:1"`
	RecipientID string             `json:"recipientId" bson:"recipientId" index:"single:1"`
	Status      string             `json:"status" bson:"status" index:"single:1"` // sent, failed
	Content     string             `json:"content" bson:"content"`                // Text đã gửi
	Error       string             `json:"error,omitempty" bson:"error,omitempty"`
	RetryCount  int                `json:"retryCount" bson:"retryCount"`
	SentAt      *int64             `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
	CreatedAt   int64              `json:"createdAt" bson:"createdAt"`
}
