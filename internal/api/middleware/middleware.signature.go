// Package middleware chứa các middleware cho Fiber app.
package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"

	"github.com/gofiber/fiber/v3"

	basehdl "pizza_commerce/internal/api/base/handler"
	"pizza_commerce/config"
	"pizza_commerce/internal/common"
	"pizza_commerce/internal/logger"
)

// ComputeSignature tính chữ ký HMAC-SHA1 của body theo định dạng header X-Hub-Signature.
func ComputeSignature(appSecret string, body []byte) string {
	mac := hmac.New(sha1.New, []byte(appSecret))
	mac.Write(body)
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature so sánh chữ ký nhận được với chữ ký tính từ body (constant-time).
func VerifySignature(appSecret string, body []byte, signature string) bool {
	expected := ComputeSignature(appSecret, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// NewSignatureMiddleware tạo middleware xác thực chữ ký X-Hub-Signature của Messenger Platform.
// Request thiếu header hoặc chữ ký sai đều bị từ chối với 403, không xử lý tiếp.
func NewSignatureMiddleware(cfg *config.Configuration) fiber.Handler {
	return func(c fiber.Ctx) error {
		// Request verify subscription (GET) không mang chữ ký, chỉ kiểm tra POST
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		signature := c.Get("X-Hub-Signature")
		if signature == "" {
			logger.WithRequest(c).Warn("🍕 [MESSENGER WEBHOOK] Request thiếu header X-Hub-Signature, từ chối")
			return basehdl.JSONResponse(c, common.StatusForbidden, fiber.Map{
				"code":    common.ErrCodeWebhookSignature.Code,
				"message": "Thiếu chữ ký xác thực",
				"status":  "error",
			})
		}

		if !VerifySignature(cfg.MessengerAppSecret, c.Body(), signature) {
			logger.WithRequest(c).Warn("🍕 [MESSENGER WEBHOOK] Chữ ký X-Hub-Signature không hợp lệ, từ chối")
			return basehdl.JSONResponse(c, common.StatusForbidden, fiber.Map{
				"code":    common.ErrCodeWebhookSignature.Code,
				"message": "Chữ ký xác thực không hợp lệ",
				"status":  "error",
			})
		}

		return c.Next()
	}
}
