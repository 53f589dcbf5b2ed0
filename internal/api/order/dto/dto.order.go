// Package dto chứa các cấu trúc input/output cho API đơn hàng.
package dto

// OrderListInput là tham số query cho API liệt kê đơn hàng.
type OrderListInput struct {
	Page        int64  `query:"page" validate:"omitempty,min=1"`
	Limit       int64  `query:"limit" validate:"omitempty,min=1,max=100"`
	Status      string `query:"status" validate:"omitempty,order_status"`
	RecipientID string `query:"recipientId" validate:"omitempty,no_xss"`
}
