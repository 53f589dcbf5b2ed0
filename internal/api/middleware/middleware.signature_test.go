// Package middleware - Test xác thực chữ ký X-Hub-Signature của webhook.
package middleware

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"pizza_commerce/config"
)

func TestComputeSignature_Format(t *testing.T) {
	sig := ComputeSignature("secret", []byte(`{"object":"page"}`))
	if !strings.HasPrefix(sig, "sha1=") {
		t.Errorf("chữ ký phải có prefix sha1=, nhận được: %s", sig)
	}
	// sha1 hex = 40 ký tự
	if len(sig) != len("sha1=")+40 {
		t.Errorf("độ dài chữ ký không đúng: %d", len(sig))
	}
	// Cùng input phải cho cùng chữ ký
	if sig != ComputeSignature("secret", []byte(`{"object":"page"}`)) {
		t.Error("chữ ký không deterministic")
	}
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"object":"page","entry":[]}`)
	sig := ComputeSignature("app-secret", body)

	if !VerifySignature("app-secret", body, sig) {
		t.Error("chữ ký đúng phải pass")
	}
	if VerifySignature("app-secret", []byte(`{"object":"page","entry":[1]}`), sig) {
		t.Error("body bị sửa phải fail")
	}
	if VerifySignature("wrong-secret", body, sig) {
		t.Error("secret sai phải fail")
	}
	if VerifySignature("app-secret", body, "sha1=deadbeef") {
		t.Error("chữ ký rác phải fail")
	}
}

func newTestApp(appSecret string) *fiber.App {
	cfg := &config.Configuration{MessengerAppSecret: appSecret}
	app := fiber.New()
	app.Use("/webhook", NewSignatureMiddleware(cfg))
	app.Get("/webhook", func(c fiber.Ctx) error {
		return c.SendString("verify")
	})
	app.Post("/webhook", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestSignatureMiddleware_MissingHeader(t *testing.T) {
	app := newTestApp("app-secret")

	req := httptest.NewRequest("POST", "/webhook", bytes.NewBufferString(`{"object":"page"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test lỗi: %v", err)
	}
	// Thiếu chữ ký phải bị từ chối, không được xử lý tiếp
	if resp.StatusCode != 403 {
		t.Errorf("thiếu header X-Hub-Signature phải trả 403, nhận được %d", resp.StatusCode)
	}
}

func TestSignatureMiddleware_InvalidSignature(t *testing.T) {
	app := newTestApp("app-secret")

	req := httptest.NewRequest("POST", "/webhook", bytes.NewBufferString(`{"object":"page"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Hub-Signature", "sha1=0000000000000000000000000000000000000000")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test lỗi: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Errorf("chữ ký sai phải trả 403, nhận được %d", resp.StatusCode)
	}
}

func TestSignatureMiddleware_ValidSignature(t *testing.T) {
	app := newTestApp("app-secret")
	body := []byte(`{"object":"page","entry":[]}`)

	req := httptest.NewRequest("POST", "/webhook", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Hub-Signature", ComputeSignature("app-secret", body))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test lỗi: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("chữ ký hợp lệ phải được xử lý tiếp, nhận được %d", resp.StatusCode)
	}
}

func TestSignatureMiddleware_SkipsGet(t *testing.T) {
	app := newTestApp("app-secret")

	// GET verify subscription không mang chữ ký, middleware phải cho qua
	req := httptest.NewRequest("GET", "/webhook", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test lỗi: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("GET không cần chữ ký, nhận được %d", resp.StatusCode)
	}
}
