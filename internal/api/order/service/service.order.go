// Package ordersvc chứa service cho domain đơn hàng pizza.
// File: service.order.go
package ordersvc

import (
	"context"
	"fmt"

	basesvc "pizza_commerce/internal/api/base/service"
	ordermodels "pizza_commerce/internal/api/order/models"
	"pizza_commerce/internal/common"
	"pizza_commerce/internal/global"
	"pizza_commerce/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderService là cấu trúc chứa các phương thức liên quan đến đơn hàng
type OrderService struct {
	*basesvc.BaseServiceMongoImpl[ordermodels.Order]
}

// NewOrderService tạo mới OrderService
func NewOrderService() (*OrderService, error) {
	orderCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Orders)
	if !exist {
		return nil, fmt.Errorf("failed to get orders collection: %v", common.ErrNotFound)
	}

	return &OrderService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[ordermodels.Order](orderCollection),
	}, nil
}

// CreateOrder tạo đơn hàng mới khi khách bắt đầu hội thoại.
// Đơn mới luôn ở trạng thái chờ chọn pizza.
func (s *OrderService) CreateOrder(ctx context.Context, userData ordermodels.OrderUserData) (*ordermodels.Order, error) {
	order := ordermodels.Order{
		OrderedAt: utility.CurrentTimeInMilli(),
		UserData:  userData,
		Status:    ordermodels.OrderStatusAwaitingSelection,
	}

	result, err := s.InsertOne(ctx, order)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordPizzaSelection ghi nhận lựa chọn pizza vào đơn hàng mở gần nhất của khách.
// Chỉ đơn đang chờ chọn pizza mới được cập nhật; đơn đã qua bước này giữ nguyên.
func (s *OrderService) RecordPizzaSelection(ctx context.Context, recipientID string, pizza string) (*ordermodels.Order, error) {
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "orderedAt", Value: -1}}).
		SetReturnDocument(options.After)

	result, err := s.FindOneAndUpdate(ctx, selectionFilter(recipientID), selectionUpdate(pizza), opts)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordDeliveryLocation ghi nhận vị trí giao hàng vào đơn đang chờ vị trí và đóng đơn.
func (s *OrderService) RecordDeliveryLocation(ctx context.Context, recipientID string, title string, lat, long float64) (*ordermodels.Order, error) {
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "orderedAt", Value: -1}}).
		SetReturnDocument(options.After)

	result, err := s.FindOneAndUpdate(ctx, locationFilter(recipientID), locationUpdate(title, lat, long), opts)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FindLatestOrderByRecipient lấy đơn hàng gần nhất của một khách (mọi trạng thái).
func (s *OrderService) FindLatestOrderByRecipient(ctx context.Context, recipientID string) (*ordermodels.Order, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "orderedAt", Value: -1}})
	result, err := s.FindOne(ctx, bson.M{"userData.recipientId": recipientID}, opts)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// selectionFilter lọc đơn của khách đang chờ chọn pizza.
func selectionFilter(recipientID string) bson.M {
	return bson.M{
		"userData.recipientId": recipientID,
		"status":               ordermodels.OrderStatusAwaitingSelection,
	}
}

// selectionUpdate gán pizza đã chọn và chuyển đơn sang chờ vị trí giao hàng.
func selectionUpdate(pizza string) bson.M {
	return bson.M{
		"$set": bson.M{
			"selection.pizza": pizza,
			"status":          ordermodels.OrderStatusAwaitingLocation,
		},
	}
}

// locationFilter lọc đơn của khách đang chờ vị trí giao hàng.
func locationFilter(recipientID string) bson.M {
	return bson.M{
		"userData.recipientId": recipientID,
		"status":               ordermodels.OrderStatusAwaitingLocation,
	}
}

// locationUpdate gán vị trí giao hàng và đóng đơn.
func locationUpdate(title string, lat, long float64) bson.M {
	return bson.M{
		"$set": bson.M{
			"location.title":            title,
			"location.coordinates.lat":  lat,
			"location.coordinates.long": long,
			"status":                    ordermodels.OrderStatusCompleted,
		},
	}
}
