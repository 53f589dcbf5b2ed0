// Package messengerhdl - Test phân loại, dispatch messaging event và webhook endpoint.
package messengerhdl

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	messengerdto "pizza_commerce/internal/api/messenger/dto"
	messengermodels "pizza_commerce/internal/api/messenger/models"
	ordermodels "pizza_commerce/internal/api/order/models"
	"pizza_commerce/config"
)

// ====================================
// FAKE COLLABORATORS
// ====================================

type fakeOrderStore struct {
	createCalls    []ordermodels.OrderUserData
	selectionCalls []string
	locationCalls  []string
	err            error
}

func (f *fakeOrderStore) CreateOrder(ctx context.Context, userData ordermodels.OrderUserData) (*ordermodels.Order, error) {
	f.createCalls = append(f.createCalls, userData)
	if f.err != nil {
		return nil, f.err
	}
	return &ordermodels.Order{ID: primitive.NewObjectID(), UserData: userData}, nil
}

func (f *fakeOrderStore) RecordPizzaSelection(ctx context.Context, recipientID string, pizza string) (*ordermodels.Order, error) {
	f.selectionCalls = append(f.selectionCalls, pizza)
	if f.err != nil {
		return nil, f.err
	}
	return &ordermodels.Order{ID: primitive.NewObjectID()}, nil
}

func (f *fakeOrderStore) RecordDeliveryLocation(ctx context.Context, recipientID string, title string, lat, long float64) (*ordermodels.Order, error) {
	f.locationCalls = append(f.locationCalls, title)
	if f.err != nil {
		return nil, f.err
	}
	return &ordermodels.Order{ID: primitive.NewObjectID()}, nil
}

type fakeWebhookLogStore struct {
	created int
	updated int
}

func (f *fakeWebhookLogStore) CreateWebhookLog(ctx context.Context, log messengermodels.WebhookLog) (*messengermodels.WebhookLog, error) {
	f.created++
	log.ID = primitive.NewObjectID()
	return &log, nil
}

func (f *fakeWebhookLogStore) UpdateProcessedStatus(ctx context.Context, logID primitive.ObjectID, processed bool, errorMsg string) error {
	f.updated++
	return nil
}

type fakeProfileClient struct {
	profile *messengerdto.GraphProfile
	err     error
}

func (f *fakeProfileClient) GetUserProfile(ctx context.Context, userID string) (*messengerdto.GraphProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type queuedReply struct {
	recipientID  string
	text         string
	quickReplies []messengerdto.QuickReplyOption
}

type fakeReplyQueue struct {
	messages []queuedReply
}

func (f *fakeReplyQueue) Enqueue(ctx context.Context, recipientID string, text string, quickReplies []messengerdto.QuickReplyOption) error {
	f.messages = append(f.messages, queuedReply{recipientID: recipientID, text: text, quickReplies: quickReplies})
	return nil
}

func newTestHandler() (*MessengerWebhookHandler, *fakeOrderStore, *fakeProfileClient, *fakeReplyQueue) {
	orders := &fakeOrderStore{}
	profiles := &fakeProfileClient{profile: &messengerdto.GraphProfile{FirstName: "Tho", LastName: "Nguyen"}}
	queue := &fakeReplyQueue{}
	h := &MessengerWebhookHandler{
		cfg:               &config.Configuration{MessengerValidationToken: "my-verify-token"},
		orderService:      orders,
		webhookLogService: &fakeWebhookLogStore{},
		graphClient:       profiles,
		queue:             queue,
	}
	return h, orders, profiles, queue
}

// ====================================
// PHÂN LOẠI EVENT (NHÃN CHO WEBHOOK LOG)
// ====================================

func TestClassifyMessagingEvent(t *testing.T) {
	tests := []struct {
		name  string
		event messengerdto.MessagingEvent
		want  string
	}{
		{
			name:  "không có message",
			event: messengerdto.MessagingEvent{},
			want:  eventIgnored,
		},
		{
			name: "optin event",
			event: messengerdto.MessagingEvent{
				Optin: &messengerdto.OptinEvent{Ref: "PASS_THROUGH_PARAM"},
			},
			want: eventOptin,
		},
		{
			name: "text Hi là greeting",
			event: messengerdto.MessagingEvent{
				Message: &messengerdto.ReceivedMessage{Text: "Hi"},
			},
			want: eventGreeting,
		},
		{
			name: "text khác bị bỏ qua",
			event: messengerdto.MessagingEvent{
				Message: &messengerdto.ReceivedMessage{Text: "Hello"},
			},
			want: eventIgnored,
		},
		{
			name: "quick reply được ưu tiên trước text",
			event: messengerdto.MessagingEvent{
				Message: &messengerdto.ReceivedMessage{
					Text:       "Salami",
					QuickReply: &messengerdto.QuickReply{Payload: "Salami"},
				},
			},
			want: eventQuickReply,
		},
		{
			name: "attachment location có tọa độ",
			event: messengerdto.MessagingEvent{
				Message: &messengerdto.ReceivedMessage{
					Attachments: []messengerdto.Attachment{
						{
							Type:  "location",
							Title: "Nhà",
							Payload: messengerdto.AttachmentPayload{
								Coordinates: &messengerdto.Coordinates{Lat: 10.76, Long: 106.66},
							},
						},
					},
				},
			},
			want: eventLocation,
		},
		{
			name: "attachment không phải location bị bỏ qua",
			event: messengerdto.MessagingEvent{
				Message: &messengerdto.ReceivedMessage{
					Attachments: []messengerdto.Attachment{
						{Type: "image", Payload: messengerdto.AttachmentPayload{URL: "http://example.com/a.jpg"}},
					},
				},
			},
			want: eventIgnored,
		},
		{
			name: "attachment location thiếu tọa độ bị bỏ qua",
			event: messengerdto.MessagingEvent{
				Message: &messengerdto.ReceivedMessage{
					Attachments: []messengerdto.Attachment{
						{Type: "location"},
					},
				},
			},
			want: eventIgnored,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyMessagingEvent(tt.event); got != tt.want {
				t.Errorf("classifyMessagingEvent() = %s, muốn %s", got, tt.want)
			}
		})
	}
}

// ====================================
// DISPATCH MESSAGING EVENT
// ====================================

func TestHandleMessagingEvent_QuickReplyAndLocationBothRun(t *testing.T) {
	h, orders, _, queue := newTestHandler()

	// Event mang cả quick reply payload lẫn attachment vị trí: cả hai nhánh phải chạy
	event := messengerdto.MessagingEvent{
		Sender: messengerdto.Participant{ID: "1111111111111111"},
		Message: &messengerdto.ReceivedMessage{
			QuickReply: &messengerdto.QuickReply{Payload: "Salami"},
			Attachments: []messengerdto.Attachment{
				{
					Type:  "location",
					Title: "Nhà",
					Payload: messengerdto.AttachmentPayload{
						Coordinates: &messengerdto.Coordinates{Lat: 52.520008, Long: 13.404954},
					},
				},
			},
		},
	}

	if err := h.handleMessagingEvent(context.Background(), event); err != nil {
		t.Fatalf("handleMessagingEvent lỗi: %v", err)
	}

	if len(orders.locationCalls) != 1 {
		t.Errorf("nhánh vị trí phải ghi nhận location đúng 1 lần, nhận được %d", len(orders.locationCalls))
	}
	if len(orders.selectionCalls) != 1 || orders.selectionCalls[0] != "Salami" {
		t.Errorf("nhánh quick reply phải ghi nhận lựa chọn Salami, nhận được %v", orders.selectionCalls)
	}

	var texts []string
	for _, m := range queue.messages {
		texts = append(texts, m.text)
	}
	if len(texts) != 2 {
		t.Fatalf("cả hai nhánh phải gửi reply, nhận được %d message: %v", len(texts), texts)
	}
	if texts[0] != "Thanks, your order is on the way" {
		t.Errorf("nhánh vị trí phải xác nhận giao hàng, nhận được %q", texts[0])
	}
	if texts[1] != "Please send me your location!" {
		t.Errorf("nhánh quick reply phải hỏi vị trí, nhận được %q", texts[1])
	}
}

func TestHandleGreeting_ProfileFetchFails_NoOrderNoReply(t *testing.T) {
	h, orders, profiles, queue := newTestHandler()
	profiles.err = errors.New("graph api unavailable")

	event := messengerdto.MessagingEvent{
		Sender:  messengerdto.Participant{ID: "1111111111111111"},
		Message: &messengerdto.ReceivedMessage{Text: "Hi"},
	}

	if err := h.handleMessagingEvent(context.Background(), event); err != nil {
		t.Fatalf("profile lỗi phải được nuốt tại boundary, nhận được %v", err)
	}
	if len(orders.createCalls) != 0 {
		t.Errorf("profile lỗi thì không được tạo đơn, đã tạo %d đơn", len(orders.createCalls))
	}
	if len(queue.messages) != 0 {
		t.Errorf("profile lỗi thì không được gửi reply, đã gửi %d message", len(queue.messages))
	}
}

func TestHandleGreeting_CreatesOrderAndSendsMenu(t *testing.T) {
	h, orders, _, queue := newTestHandler()

	event := messengerdto.MessagingEvent{
		Sender:  messengerdto.Participant{ID: "1111111111111111"},
		Message: &messengerdto.ReceivedMessage{Text: "Hi"},
	}

	if err := h.handleMessagingEvent(context.Background(), event); err != nil {
		t.Fatalf("handleMessagingEvent lỗi: %v", err)
	}
	if len(orders.createCalls) != 1 || orders.createCalls[0].FirstName != "Tho" {
		t.Fatalf("đơn mới phải mang profile đã fetch, nhận được %+v", orders.createCalls)
	}
	if len(queue.messages) != 1 {
		t.Fatalf("greeting phải gửi đúng 1 message, nhận được %d", len(queue.messages))
	}
	if queue.messages[0].text != "Hi Tho, please choose which Pizza do you want to order:" {
		t.Errorf("greeting sai: %q", queue.messages[0].text)
	}
	if len(queue.messages[0].quickReplies) != 3 {
		t.Errorf("menu phải có 3 quick reply, nhận được %d", len(queue.messages[0].quickReplies))
	}
}

func TestHandleMessagingEvent_OptinAcknowledged(t *testing.T) {
	h, orders, _, queue := newTestHandler()

	event := messengerdto.MessagingEvent{
		Sender: messengerdto.Participant{ID: "1111111111111111"},
		Optin:  &messengerdto.OptinEvent{Ref: "PASS_THROUGH_PARAM"},
	}

	if err := h.handleMessagingEvent(context.Background(), event); err != nil {
		t.Fatalf("optin event phải được ghi nhận không lỗi, nhận được %v", err)
	}
	if len(orders.createCalls)+len(orders.selectionCalls)+len(orders.locationCalls) != 0 {
		t.Error("optin event không được chạm vào đơn hàng")
	}
	if len(queue.messages) != 0 {
		t.Error("optin event không được gửi reply")
	}
}

// ====================================
// HTTP ENDPOINTS
// ====================================

func newVerifyApp(validationToken string) *fiber.App {
	h := &MessengerWebhookHandler{cfg: &config.Configuration{MessengerValidationToken: validationToken}}
	app := fiber.New()
	app.Get("/webhook", h.HandleVerifySubscription)
	return app
}

func TestHandleVerifySubscription_EchoesChallenge(t *testing.T) {
	app := newVerifyApp("my-verify-token")

	req := httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=my-verify-token&hub.challenge=1158201444", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test lỗi: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("verify token đúng phải trả 200, nhận được %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "1158201444" {
		t.Errorf("phải echo lại hub.challenge, nhận được %q", string(body))
	}
}

func TestHandleVerifySubscription_WrongToken(t *testing.T) {
	app := newVerifyApp("my-verify-token")

	req := httptest.NewRequest("GET", "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=123", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test lỗi: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Errorf("verify token sai phải trả 403, nhận được %d", resp.StatusCode)
	}
}

func TestHandleVerifySubscription_WrongMode(t *testing.T) {
	app := newVerifyApp("my-verify-token")

	req := httptest.NewRequest("GET", "/webhook?hub.mode=unsubscribe&hub.verify_token=my-verify-token&hub.challenge=123", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test lỗi: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Errorf("hub.mode khác subscribe phải trả 403, nhận được %d", resp.StatusCode)
	}
}

func newIncomingApp(h *MessengerWebhookHandler) *fiber.App {
	app := fiber.New()
	app.Post("/webhook", h.HandleIncomingEvent)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test lỗi: %v", err)
	}
	return resp.StatusCode
}

func TestHandleIncomingEvent_BatchReturnsSingle200(t *testing.T) {
	h, orders, _, queue := newTestHandler()
	app := newIncomingApp(h)

	// 3 event trải trên 2 entry: greeting, quick reply, location
	body := `{
		"object": "page",
		"entry": [
			{
				"id": "page-1",
				"time": 1458692752478,
				"messaging": [
					{"sender": {"id": "1111111111111111"}, "recipient": {"id": "page-1"}, "message": {"mid": "m1", "text": "Hi"}},
					{"sender": {"id": "2222222222222222"}, "recipient": {"id": "page-1"}, "message": {"mid": "m2", "text": "Salami", "quick_reply": {"payload": "Salami"}}}
				]
			},
			{
				"id": "page-1",
				"time": 1458692752480,
				"messaging": [
					{"sender": {"id": "3333333333333333"}, "recipient": {"id": "page-1"}, "message": {"mid": "m3", "attachments": [{"type": "location", "title": "Nhà", "payload": {"coordinates": {"lat": 52.520008, "long": 13.404954}}}]}}
				]
			}
		]
	}`

	if status := postWebhook(t, app, body); status != 200 {
		t.Fatalf("batch event phải trả đúng một response 200, nhận được %d", status)
	}
	if len(orders.createCalls) != 1 || len(orders.selectionCalls) != 1 || len(orders.locationCalls) != 1 {
		t.Errorf("cả 3 event phải được xử lý (create=%d, selection=%d, location=%d)",
			len(orders.createCalls), len(orders.selectionCalls), len(orders.locationCalls))
	}
	if len(queue.messages) != 3 {
		t.Errorf("mỗi event phải sinh đúng 1 reply, nhận được %d", len(queue.messages))
	}
}

func TestHandleIncomingEvent_StoreErrorStillReturns200(t *testing.T) {
	h, orders, _, _ := newTestHandler()
	orders.err = errors.New("mongo write failed")
	app := newIncomingApp(h)

	body := `{
		"object": "page",
		"entry": [
			{
				"id": "page-1",
				"time": 1458692752478,
				"messaging": [
					{"sender": {"id": "2222222222222222"}, "recipient": {"id": "page-1"}, "message": {"mid": "m1", "text": "Salami", "quick_reply": {"payload": "Salami"}}}
				]
			}
		]
	}`

	if status := postWebhook(t, app, body); status != 200 {
		t.Errorf("lỗi ghi store không được đổi HTTP status, nhận được %d", status)
	}
}

func TestHandleIncomingEvent_NonPageObjectReturns200(t *testing.T) {
	h, orders, _, _ := newTestHandler()
	app := newIncomingApp(h)

	if status := postWebhook(t, app, `{"object": "user", "entry": []}`); status != 200 {
		t.Errorf("object khác page vẫn phải trả 200, nhận được %d", status)
	}
	if len(orders.createCalls) != 0 {
		t.Error("object khác page không được dispatch event")
	}
}

func TestHandleIncomingEvent_MalformedBodyReturns200(t *testing.T) {
	h, _, _, _ := newTestHandler()
	app := newIncomingApp(h)

	if status := postWebhook(t, app, `{not-json`); status != 200 {
		t.Errorf("body không parse được vẫn phải trả 200, nhận được %d", status)
	}
}

func TestIsKnownPizza(t *testing.T) {
	for _, pizza := range []string{"Salami", "Speciale", "Funghi"} {
		if !isKnownPizza(pizza) {
			t.Errorf("%s phải nằm trong menu", pizza)
		}
	}
	if isKnownPizza("Hawaii") {
		t.Error("Hawaii không có trong menu")
	}
	if isKnownPizza("salami") {
		t.Error("payload phân biệt hoa thường, salami phải fail")
	}
}

func TestPizzaQuickReplies(t *testing.T) {
	replies := pizzaQuickReplies()
	if len(replies) != 3 {
		t.Fatalf("menu phải có 3 pizza, nhận được %d", len(replies))
	}
	for _, r := range replies {
		if r.ContentType != "text" {
			t.Errorf("quick reply menu phải có content_type text, nhận được %s", r.ContentType)
		}
		// Title và payload phải giống nhau để webhook nhận lại đúng tên pizza
		if r.Title != r.Payload {
			t.Errorf("title (%s) phải bằng payload (%s)", r.Title, r.Payload)
		}
	}
}
