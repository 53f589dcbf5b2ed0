package global

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"

	"pizza_commerce/internal/registry"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Orders          string // Tên collection cho đơn hàng pizza
	WebhookLogs     string // Tên collection cho log webhook nhận được
	DeliveryQueue   string // Tên collection cho queue gửi tin nhắn đi
	DeliveryHistory string // Tên collection cho lịch sử gửi tin nhắn
}

// Các biến toàn cục
var Validate *validator.Validate                                              // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                             // Phiên kết nối tới MongoDB
var MongoDB_ColNames MongoDB_CollectionName = *new(MongoDB_CollectionName)    // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases
