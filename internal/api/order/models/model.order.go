// Package models định nghĩa các model cho domain đơn hàng pizza.
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Trạng thái vòng đời của một đơn hàng trong hội thoại đặt pizza.
const (
	// OrderStatusAwaitingSelection - đơn vừa tạo sau lời chào, chờ khách chọn pizza
	OrderStatusAwaitingSelection = "awaiting_selection"
	// OrderStatusAwaitingLocation - khách đã chọn pizza, chờ gửi vị trí giao hàng
	OrderStatusAwaitingLocation = "awaiting_location"
	// OrderStatusCompleted - đơn đã đủ thông tin, sẵn sàng giao
	OrderStatusCompleted = "completed"
)

// Order đại diện cho một đơn hàng pizza được thu thập qua hội thoại Messenger.
// Mỗi lượt chào hỏi tạo một đơn mới; selection và location được bổ sung dần
// theo trạng thái của đơn.
type Order struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OrderedAt int64              `json:"orderedAt" bson:"orderedAt" index:"single:-1"` // Thời điểm khách bắt đầu đặt (Unix ms)
	UserData  OrderUserData      `json:"userData" bson:"userData"`
	Selection OrderSelection     `json:"selection,omitempty" bson:"selection,omitempty"`
	Location  OrderLocation      `json:"location,omitempty" bson:"location,omitempty"`
	Status    string             `json:"status" bson:"status" index:"single:1"`
	CreatedAt int64              `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt int64              `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// OrderUserData chứa thông tin profile của khách lấy từ Graph API.
type OrderUserData struct {
	RecipientID string `json:"recipientId" bson:"recipientId"` // PSID của khách trên Messenger
	FirstName   string `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty" bson:"lastName,omitempty"`
	ProfilePic  string `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	Locale      string `json:"locale,omitempty" bson:"locale,omitempty"`
	Timezone    int    `json:"timezone,omitempty" bson:"timezone,omitempty"`
	Gender      string `json:"gender,omitempty" bson:"gender,omitempty"`
}

// OrderSelection chứa lựa chọn pizza của khách.
type OrderSelection struct {
	Pizza string `json:"pizza,omitempty" bson:"pizza,omitempty"`
}

// OrderLocation chứa vị trí giao hàng khách chia sẻ qua attachment.
type OrderLocation struct {
	Title       string           `json:"title,omitempty" bson:"title,omitempty"`
	Coordinates OrderCoordinates `json:"coordinates" bson:"coordinates"`
}

// OrderCoordinates là tọa độ giao hàng.
type OrderCoordinates struct {
	Lat  float64 `json:"lat" bson:"lat"`
	Long float64 `json:"long" bson:"long"`
}
