// Package orderhdl chứa handler cho API đọc đơn hàng.
package orderhdl

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basehdl "pizza_commerce/internal/api/base/handler"
	orderdto "pizza_commerce/internal/api/order/dto"
	ordersvc "pizza_commerce/internal/api/order/service"
	"pizza_commerce/internal/common"
	"pizza_commerce/internal/global"
)

// OrderHandler xử lý các yêu cầu đọc đơn hàng qua REST API
type OrderHandler struct {
	OrderService *ordersvc.OrderService
}

// NewOrderHandler khởi tạo OrderHandler mới
func NewOrderHandler() (*OrderHandler, error) {
	service, err := ordersvc.NewOrderService()
	if err != nil {
		return nil, fmt.Errorf("failed to create order service: %v", err)
	}
	return &OrderHandler{OrderService: service}, nil
}

// HandleListOrders liệt kê đơn hàng có phân trang, lọc theo status và recipientId.
func (h *OrderHandler) HandleListOrders(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		input := new(orderdto.OrderListInput)
		if err := c.Bind().Query(input); err != nil {
			basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
			return nil
		}

		if err := global.Validate.Struct(input); err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput,
				"Tham số truy vấn không hợp lệ",
				common.StatusBadRequest,
				err.Error(),
			))
			return nil
		}

		filter := bson.M{}
		if input.Status != "" {
			filter["status"] = input.Status
		}
		if input.RecipientID != "" {
			filter["userData.recipientId"] = input.RecipientID
		}

		opts := options.Find().SetSort(bson.D{{Key: "orderedAt", Value: -1}})
		data, err := h.OrderService.FindWithPagination(context.Background(), filter, input.Page, input.Limit, opts)
		basehdl.HandleResponse(c, data, err)
		return nil
	})
}

// HandleFindOrderById tìm một đơn hàng theo ObjectId.
func (h *OrderHandler) HandleFindOrderById(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		id, err := primitive.ObjectIDFromHex(c.Params("id"))
		if err != nil {
			basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationFormat,
				"ID đơn hàng không hợp lệ",
				common.StatusBadRequest,
				nil,
			))
			return nil
		}

		data, err := h.OrderService.FindOneById(context.Background(), id)
		basehdl.HandleResponse(c, data, err)
		return nil
	})
}
