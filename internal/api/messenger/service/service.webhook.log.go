// Package messengersvc chứa service cho domain Messenger (webhook log).
// File: service.webhook.log.go
package messengersvc

import (
	"context"
	"fmt"

	basesvc "pizza_commerce/internal/api/base/service"
	messengermodels "pizza_commerce/internal/api/messenger/models"
	"pizza_commerce/internal/common"
	"pizza_commerce/internal/global"
	"pizza_commerce/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WebhookLogService là cấu trúc chứa các phương thức liên quan đến webhook logs
type WebhookLogService struct {
	*basesvc.BaseServiceMongoImpl[messengermodels.WebhookLog]
}

// NewWebhookLogService tạo mới WebhookLogService
func NewWebhookLogService() (*WebhookLogService, error) {
	webhookLogCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.WebhookLogs)
	if !exist {
		return nil, fmt.Errorf("failed to get webhook_logs collection: %v", common.ErrNotFound)
	}

	return &WebhookLogService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[messengermodels.WebhookLog](webhookLogCollection),
	}, nil
}

// CreateWebhookLog tạo mới webhook log
func (s *WebhookLogService) CreateWebhookLog(ctx context.Context, log messengermodels.WebhookLog) (*messengermodels.WebhookLog, error) {
	result, err := s.InsertOne(ctx, log)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateProcessedStatus cập nhật trạng thái đã xử lý của webhook log
func (s *WebhookLogService) UpdateProcessedStatus(ctx context.Context, logID primitive.ObjectID, processed bool, errorMsg string) error {
	filter := bson.M{"_id": logID}
	setFields := bson.M{
		"processed":    processed,
		"processError": errorMsg,
		"updatedAt":    utility.CurrentTimeInMilli(),
	}
	if processed {
		setFields["processedAt"] = utility.CurrentTimeInMilli()
	}

	opts := options.Update()
	_, err := s.Collection().UpdateOne(ctx, filter, bson.M{"$set": setFields}, opts)
	if err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}
