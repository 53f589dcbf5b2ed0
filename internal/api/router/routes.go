// Package router đăng ký toàn bộ route của ứng dụng:
// webhook Messenger (public, có xác thực chữ ký), API đọc đơn hàng và health check.
package router

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"

	basehdl "pizza_commerce/internal/api/base/handler"
	messengerhdl "pizza_commerce/internal/api/messenger/handler"
	"pizza_commerce/internal/api/middleware"
	orderhdl "pizza_commerce/internal/api/order/handler"
	"pizza_commerce/config"
	"pizza_commerce/internal/common"
	"pizza_commerce/internal/global"
	"pizza_commerce/internal/utility"
)

// SetupRoutes đăng ký tất cả routes của ứng dụng
func SetupRoutes(app *fiber.App, cfg *config.Configuration) error {
	messengerWebhookHandler, err := messengerhdl.NewMessengerWebhookHandler(cfg)
	if err != nil {
		return fmt.Errorf("create messenger webhook handler: %w", err)
	}

	// Webhook Messenger: GET để verify subscription, POST nhận event.
	// Middleware chữ ký gắn theo path /webhook; bên trong chỉ kiểm tra request POST
	// (request verify GET không mang chữ ký).
	app.Use("/webhook", middleware.NewSignatureMiddleware(cfg))
	app.Get("/webhook", messengerWebhookHandler.HandleVerifySubscription)
	app.Post("/webhook", messengerWebhookHandler.HandleIncomingEvent)

	// API đọc đơn hàng
	orderHandler, err := orderhdl.NewOrderHandler()
	if err != nil {
		return fmt.Errorf("create order handler: %w", err)
	}
	v1 := app.Group("/api/v1")
	v1.Get("/orders", orderHandler.HandleListOrders)
	v1.Get("/orders/:id", orderHandler.HandleFindOrderById)

	// Health check: ping database qua registry để xác nhận service sẵn sàng
	app.Get("/health", func(c fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		status := "ok"
		httpStatus := common.StatusOK
		db, exists := global.RegistryDatabase.Get(cfg.MongoDB_DBName)
		if !exists {
			status = "degraded"
			httpStatus = common.StatusServiceUnavailable
		} else if err := db.RunCommand(ctx, bson.M{"ping": 1}).Err(); err != nil {
			status = "degraded"
			httpStatus = common.StatusServiceUnavailable
		}

		return basehdl.JSONResponse(c, httpStatus, fiber.Map{
			"status":    status,
			"timestamp": utility.CurrentTimeInMilli(),
		})
	})

	return nil
}
