// File: service.delivery.history.go - service data access cho lịch sử gửi message.
package deliverysvc

import (
	"fmt"

	basesvc "pizza_commerce/internal/api/base/service"
	deliverymodels "pizza_commerce/internal/api/delivery/models"
	"pizza_commerce/internal/common"
	"pizza_commerce/internal/global"
)

// DeliveryHistoryService là service quản lý lịch sử gửi message.
type DeliveryHistoryService struct {
	*basesvc.BaseServiceMongoImpl[deliverymodels.DeliveryHistory]
}

// NewDeliveryHistoryService tạo mới DeliveryHistoryService
func NewDeliveryHistoryService() (*DeliveryHistoryService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.DeliveryHistory)
	if !exist {
		return nil, fmt.Errorf("failed to get delivery_history collection: %v", common.ErrNotFound)
	}

	return &DeliveryHistoryService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[deliverymodels.DeliveryHistory](collection),
	}, nil
}
