package main

import (
	"context"

	"github.com/sirupsen/logrus"

	deliverymodels "pizza_commerce/internal/api/delivery/models"
	messengermodels "pizza_commerce/internal/api/messenger/models"
	ordermodels "pizza_commerce/internal/api/order/models"
	"pizza_commerce/config"
	"pizza_commerce/internal/database"
	"pizza_commerce/internal/global"
)

// InitGlobal khởi tạo các biến toàn cục và hạ tầng (collection names, validator, MongoDB).
// Config được truyền vào tường minh, không giữ trong global.
func InitGlobal(cfg *config.Configuration) {
	initColNames()            // Khởi tạo tên các collection trong database
	initValidator()           // Khởi tạo validator
	initDatabase_MongoDB(cfg) // Khởi tạo kết nối database và index
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Orders = "orders"
	global.MongoDB_ColNames.WebhookLogs = "webhook_logs"

	// Delivery System Collections (gửi message Messenger ở background)
	global.MongoDB_ColNames.DeliveryQueue = "delivery_queue"
	global.MongoDB_ColNames.DeliveryHistory = "delivery_history"

	logrus.Info("Initialized collection names") // Ghi log thông báo đã khởi tạo tên các collection
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: no_xss, order_status)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator") // Ghi log thông báo đã khởi tạo validator
}

// Hàm khởi tạo kết nối database, đảm bảo collection và index
func initDatabase_MongoDB(cfg *config.Configuration) {
	var err error
	global.MongoDB_Session, err = database.GetInstance(cfg)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err) // Ghi log lỗi nếu kết nối database thất bại
	}
	logrus.Info("Connected to MongoDB") // Ghi log thông báo đã kết nối database thành công

	// Khởi tạo db và các collection nếu chưa có
	if err := database.EnsureDatabaseAndCollections(global.MongoDB_Session, cfg.MongoDB_DBName); err != nil {
		logrus.Fatalf("Failed to ensure database and collections: %v", err)
	}
	logrus.Info("Ensured database and collections") // Ghi log thông báo đã đảm bảo database và các collection

	// Khởi tạo các index cho các collection
	dbName := cfg.MongoDB_DBName
	db := global.MongoDB_Session.Database(dbName)
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Orders), ordermodels.Order{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.WebhookLogs), messengermodels.WebhookLog{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.DeliveryQueue), deliverymodels.DeliveryQueueItem{})
	database.CreateIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.DeliveryHistory), deliverymodels.DeliveryHistory{})

	// Index compound cho tra cứu "đơn mở gần nhất của một người"
	if err := database.EnsureOrderIndexes(context.TODO(), db.Collection(global.MongoDB_ColNames.Orders)); err != nil {
		logrus.Warnf("Failed to ensure order indexes: %v", err)
	}
}
