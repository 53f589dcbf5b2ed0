// Package messengerhdl - handler webhook Messenger (verify subscription + hội thoại đặt pizza).
package messengerhdl

import (
	"context"
	"fmt"

	basehdl "pizza_commerce/internal/api/base/handler"
	messengerdto "pizza_commerce/internal/api/messenger/dto"
	messengermodels "pizza_commerce/internal/api/messenger/models"
	messengersvc "pizza_commerce/internal/api/messenger/service"
	ordermodels "pizza_commerce/internal/api/order/models"
	ordersvc "pizza_commerce/internal/api/order/service"
	"pizza_commerce/internal/api/messenger/client"
	"pizza_commerce/config"
	"pizza_commerce/internal/common"
	"pizza_commerce/internal/delivery"
	"pizza_commerce/internal/logger"
	"pizza_commerce/internal/utility"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Loại event hội thoại sau khi phân loại một messaging event.
const (
	eventOptin      = "optin"       // Authentication/optin từ plugin Send-to-Messenger
	eventGreeting   = "greeting"    // Khách gửi "Hi", bắt đầu đặt pizza
	eventQuickReply = "quick_reply" // Khách bấm chọn pizza từ quick reply
	eventLocation   = "location"    // Khách chia sẻ vị trí giao hàng
	eventIgnored    = "ignored"     // Event không thuộc luồng đặt pizza
)

// Các pizza có trong menu (title == payload trong quick reply).
var pizzaMenu = []string{"Salami", "Speciale", "Funghi"}

// orderStore ghi nhận các bước của đơn hàng pizza.
type orderStore interface {
	CreateOrder(ctx context.Context, userData ordermodels.OrderUserData) (*ordermodels.Order, error)
	RecordPizzaSelection(ctx context.Context, recipientID string, pizza string) (*ordermodels.Order, error)
	RecordDeliveryLocation(ctx context.Context, recipientID string, title string, lat, long float64) (*ordermodels.Order, error)
}

// webhookLogStore lưu và cập nhật trạng thái xử lý của webhook log.
type webhookLogStore interface {
	CreateWebhookLog(ctx context.Context, log messengermodels.WebhookLog) (*messengermodels.WebhookLog, error)
	UpdateProcessedStatus(ctx context.Context, logID primitive.ObjectID, processed bool, errorMsg string) error
}

// profileClient lấy profile người dùng từ Graph API.
type profileClient interface {
	GetUserProfile(ctx context.Context, userID string) (*messengerdto.GraphProfile, error)
}

// replyQueue enqueue message chờ gửi cho khách.
type replyQueue interface {
	Enqueue(ctx context.Context, recipientID string, text string, quickReplies []messengerdto.QuickReplyOption) error
}

// MessengerWebhookHandler xử lý các webhook từ Messenger Platform
type MessengerWebhookHandler struct {
	cfg               *config.Configuration
	orderService      orderStore
	webhookLogService webhookLogStore
	graphClient       profileClient
	queue             replyQueue
}

// NewMessengerWebhookHandler tạo mới MessengerWebhookHandler
func NewMessengerWebhookHandler(cfg *config.Configuration) (*MessengerWebhookHandler, error) {
	orderService, err := ordersvc.NewOrderService()
	if err != nil {
		return nil, fmt.Errorf("failed to create order service: %v", err)
	}
	webhookLogService, err := messengersvc.NewWebhookLogService()
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook log service: %v", err)
	}
	queue, err := delivery.NewQueue(cfg.DeliveryMaxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery queue: %v", err)
	}
	return &MessengerWebhookHandler{
		cfg:               cfg,
		orderService:      orderService,
		webhookLogService: webhookLogService,
		graphClient:       client.NewGraphClient(cfg),
		queue:             queue,
	}, nil
}

// HandleVerifySubscription xử lý GET /webhook: Messenger Platform xác minh endpoint
// bằng verify token, endpoint phải echo lại hub.challenge.
func (h *MessengerWebhookHandler) HandleVerifySubscription(c fiber.Ctx) error {
	mode := c.Query("hub.mode")
	verifyToken := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && verifyToken == h.cfg.MessengerValidationToken {
		logger.WithRequest(c).Info("🍕 [MESSENGER WEBHOOK] Xác minh webhook thành công")
		return c.Status(common.StatusOK).SendString(challenge)
	}

	logger.WithRequest(c).Warn("🍕 [MESSENGER WEBHOOK] Xác minh webhook thất bại, verify token không đúng")
	return basehdl.JSONResponse(c, common.StatusForbidden, fiber.Map{
		"code":    common.ErrCodeWebhookVerify.Code,
		"message": "Verify token không đúng",
		"status":  "error",
	})
}

// HandleIncomingEvent xử lý POST /webhook: nhận batch event từ Messenger Platform,
// lưu log, chạy hội thoại đặt pizza và luôn trả 200 để platform không gửi lại.
func (h *MessengerWebhookHandler) HandleIncomingEvent(c fiber.Ctx) error {
	return basehdl.SafeHandlerWrapper(c, func() error {
		log := logger.GetAppLogger()
		rawBody := string(c.Body())
		ctx := c.Context()

		var req messengerdto.WebhookEvent
		parseErr := c.Bind().Body(&req)

		webhookLog, logErr := h.saveWebhookLog(ctx, c, req, rawBody, parseErr)
		if logErr != nil {
			log.WithError(logErr).Warn("🍕 [MESSENGER WEBHOOK] Không thể lưu webhook log")
		}

		if parseErr != nil || req.Object != "page" {
			c.Status(common.StatusOK).JSON(fiber.Map{
				"code": common.StatusOK, "message": "Webhook đã được nhận và lưu log", "status": "success",
			})
			return nil
		}

		var processErr error
		for _, entry := range req.Entry {
			for _, event := range entry.Messaging {
				if err := h.handleMessagingEvent(ctx, event); err != nil {
					processErr = err
					log.WithError(err).WithFields(map[string]interface{}{
						"senderId": event.Sender.ID,
						"pageId":   entry.ID,
					}).Error("🍕 [MESSENGER WEBHOOK] Lỗi khi xử lý messaging event")
				}
			}
		}

		if webhookLog != nil {
			errorMsg := ""
			if processErr != nil {
				errorMsg = processErr.Error()
			}
			_ = h.webhookLogService.UpdateProcessedStatus(ctx, webhookLog.ID, processErr == nil, errorMsg)
		}

		// Luôn trả 200: Messenger Platform sẽ retry và cuối cùng vô hiệu hóa webhook
		// nếu nhận status lỗi.
		c.Status(common.StatusOK).JSON(fiber.Map{
			"code": common.StatusOK, "message": "Webhook đã được nhận và lưu log", "status": "success",
		})
		return nil
	})
}

// handleMessagingEvent xử lý một messaging event đơn lẻ.
// Nhánh text/vị trí loại trừ lẫn nhau, nhưng nhánh quick reply chạy độc lập
// và bổ sung: một event vừa mang vị trí vừa mang quick reply payload chạy cả hai.
func (h *MessengerWebhookHandler) handleMessagingEvent(ctx context.Context, event messengerdto.MessagingEvent) error {
	log := logger.GetAppLogger()

	if event.Optin != nil {
		// Authentication/optin: chỉ ghi nhận, không có bước hội thoại tiếp theo
		log.WithFields(map[string]interface{}{
			"senderId": event.Sender.ID,
			"ref":      event.Optin.Ref,
		}).Info("🍕 [MESSENGER WEBHOOK] Nhận authentication/optin event")
		return nil
	}
	if event.Message == nil {
		log.WithFields(map[string]interface{}{
			"senderId": event.Sender.ID,
		}).Debug("🍕 [MESSENGER WEBHOOK] Event không có message, bỏ qua")
		return nil
	}

	var firstErr error
	matched := false

	if event.Message.Text == "Hi" {
		matched = true
		firstErr = h.handleGreeting(ctx, event.Sender.ID)
	} else if attachment := locationAttachment(event); attachment != nil {
		matched = true
		firstErr = h.handleLocation(ctx, event.Sender.ID, attachment.Title, attachment.Payload.Coordinates.Lat, attachment.Payload.Coordinates.Long)
	}

	if event.Message.QuickReply != nil && event.Message.QuickReply.Payload != "" {
		matched = true
		if err := h.handleQuickReply(ctx, event.Sender.ID, event.Message.QuickReply.Payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if !matched {
		log.WithFields(map[string]interface{}{
			"senderId": event.Sender.ID,
		}).Debug("🍕 [MESSENGER WEBHOOK] Event không thuộc luồng đặt pizza, bỏ qua")
	}
	return firstErr
}

// handleGreeting: khách gửi "Hi" - lấy profile, tạo đơn mới và gửi menu pizza.
// Đơn chỉ được tạo sau khi lấy profile thành công; profile lỗi thì không tạo đơn
// và không gửi reply, khách gửi "Hi" lại để bắt đầu.
func (h *MessengerWebhookHandler) handleGreeting(ctx context.Context, senderID string) error {
	log := logger.GetAppLogger()

	profile, err := h.graphClient.GetUserProfile(ctx, senderID)
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"senderId": senderID,
		}).Warn("🍕 [MESSENGER WEBHOOK] Không lấy được profile, bỏ qua greeting")
		return nil
	}

	userData := ordermodels.OrderUserData{
		RecipientID: senderID,
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		ProfilePic:  profile.ProfilePic,
		Locale:      profile.Locale,
		Timezone:    profile.Timezone,
		Gender:      profile.Gender,
	}

	order, err := h.orderService.CreateOrder(ctx, userData)
	if err != nil {
		// Lỗi ghi DB không được chặn phản hồi cho khách
		log.WithError(err).WithField("senderId", senderID).Error("🍕 [MESSENGER WEBHOOK] Không thể tạo đơn hàng")
	} else {
		log.WithFields(map[string]interface{}{
			"orderId":  order.ID.Hex(),
			"senderId": senderID,
		}).Info("🍕 [MESSENGER WEBHOOK] Đã tạo đơn hàng mới")
	}

	greeting := fmt.Sprintf("Hi %s, please choose which Pizza do you want to order:", profile.FirstName)
	return h.queue.Enqueue(ctx, senderID, greeting, pizzaQuickReplies())
}

// handleQuickReply: khách chọn pizza - ghi nhận lựa chọn rồi hỏi vị trí giao hàng.
func (h *MessengerWebhookHandler) handleQuickReply(ctx context.Context, senderID string, payload string) error {
	log := logger.GetAppLogger()

	order, err := h.orderService.RecordPizzaSelection(ctx, senderID, payload)
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"senderId": senderID,
			"payload":  payload,
		}).Error("🍕 [MESSENGER WEBHOOK] Không thể ghi nhận lựa chọn pizza")
	} else {
		log.WithFields(map[string]interface{}{
			"orderId":  order.ID.Hex(),
			"senderId": senderID,
			"pizza":    payload,
		}).Info("🍕 [MESSENGER WEBHOOK] Đã ghi nhận lựa chọn pizza")
	}

	if !isKnownPizza(payload) {
		return h.queue.Enqueue(ctx, senderID, "Please order again!", nil)
	}

	return h.queue.Enqueue(ctx, senderID, "Please send me your location!", []messengerdto.QuickReplyOption{
		{ContentType: "location"},
	})
}

// handleLocation: khách chia sẻ vị trí - đóng đơn và xác nhận giao hàng.
func (h *MessengerWebhookHandler) handleLocation(ctx context.Context, senderID string, title string, lat, long float64) error {
	log := logger.GetAppLogger()

	order, err := h.orderService.RecordDeliveryLocation(ctx, senderID, title, lat, long)
	if err != nil {
		log.WithError(err).WithField("senderId", senderID).Error("🍕 [MESSENGER WEBHOOK] Không thể ghi nhận vị trí giao hàng")
	} else {
		log.WithFields(map[string]interface{}{
			"orderId":  order.ID.Hex(),
			"senderId": senderID,
		}).Info("🍕 [MESSENGER WEBHOOK] Đơn hàng đã hoàn tất")
	}

	return h.queue.Enqueue(ctx, senderID, "Thanks, your order is on the way", nil)
}

// saveWebhookLog lưu toàn bộ request webhook vào collection webhook_logs để debug.
func (h *MessengerWebhookHandler) saveWebhookLog(ctx context.Context, c fiber.Ctx, req messengerdto.WebhookEvent, rawBody string, parseErr error) (*messengermodels.WebhookLog, error) {
	now := utility.CurrentTimeInMilli()

	requestHeaders := make(map[string]string)
	c.Request().Header.VisitAll(func(key, value []byte) {
		requestHeaders[string(key)] = string(value)
	})

	requestBody := make(map[string]interface{})
	eventType := "unknown"
	pageID := ""
	if parseErr == nil {
		requestBody = map[string]interface{}{"object": req.Object, "entryCount": len(req.Entry)}
		if len(req.Entry) > 0 {
			pageID = req.Entry[0].ID
			if len(req.Entry[0].Messaging) > 0 {
				eventType = classifyMessagingEvent(req.Entry[0].Messaging[0])
			}
		}
	} else {
		requestBody = map[string]interface{}{"parseError": parseErr.Error()}
	}

	webhookLog := messengermodels.WebhookLog{
		Source:         "messenger",
		EventType:      eventType,
		PageID:         pageID,
		RequestHeaders: requestHeaders,
		RequestBody:    requestBody,
		RawBody:        rawBody,
		Processed:      false,
		IPAddress:      c.IP(),
		UserAgent:      c.Get("User-Agent"),
		ReceivedAt:     now,
	}

	return h.webhookLogService.CreateWebhookLog(ctx, webhookLog)
}

// classifyMessagingEvent gán nhãn loại event cho webhook log. Nhãn chỉ mang
// một giá trị (quick reply được ưu tiên vì message quick reply cũng mang text
// của title); việc dispatch thực tế nằm ở handleMessagingEvent.
func classifyMessagingEvent(event messengerdto.MessagingEvent) string {
	if event.Optin != nil {
		return eventOptin
	}
	if event.Message == nil {
		return eventIgnored
	}
	if event.Message.QuickReply != nil && event.Message.QuickReply.Payload != "" {
		return eventQuickReply
	}
	if locationAttachment(event) != nil {
		return eventLocation
	}
	if event.Message.Text == "Hi" {
		return eventGreeting
	}
	return eventIgnored
}

// locationAttachment trả về attachment vị trí đầu tiên có tọa độ, nil nếu không có.
func locationAttachment(event messengerdto.MessagingEvent) *messengerdto.Attachment {
	if event.Message == nil {
		return nil
	}
	for i := range event.Message.Attachments {
		attachment := &event.Message.Attachments[i]
		if attachment.Type == "location" && attachment.Payload.Coordinates != nil {
			return attachment
		}
	}
	return nil
}

// isKnownPizza kiểm tra payload quick reply có nằm trong menu không.
func isKnownPizza(payload string) bool {
	for _, pizza := range pizzaMenu {
		if pizza == payload {
			return true
		}
	}
	return false
}

// pizzaQuickReplies dựng danh sách quick reply menu pizza (title == payload).
func pizzaQuickReplies() []messengerdto.QuickReplyOption {
	replies := make([]messengerdto.QuickReplyOption, 0, len(pizzaMenu))
	for _, pizza := range pizzaMenu {
		replies = append(replies, messengerdto.QuickReplyOption{
			ContentType: "text",
			Title:       pizza,
			Payload:     pizza,
		})
	}
	return replies
}
