// Package dto chứa các cấu trúc dữ liệu trao đổi với Messenger Platform:
// payload webhook nhận vào và payload Send API gửi ra.
package dto

// ====================================
// WEBHOOK NHẬN VÀO
// ====================================

// WebhookEvent là payload POST /webhook từ Messenger Platform.
// Một request có thể gom nhiều entry, mỗi entry nhiều messaging event (batching).
type WebhookEvent struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry là một entry của page trong batch.
type WebhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

// MessagingEvent là một sự kiện hội thoại đơn lẻ.
type MessagingEvent struct {
	Sender    Participant      `json:"sender"`
	Recipient Participant      `json:"recipient"`
	Timestamp int64            `json:"timestamp"`
	Message   *ReceivedMessage `json:"message,omitempty"`
	Optin     *OptinEvent      `json:"optin,omitempty"`
}

// OptinEvent là sự kiện authentication/optin từ plugin Send-to-Messenger.
type OptinEvent struct {
	Ref string `json:"ref,omitempty"`
}

// Participant định danh một bên của hội thoại (PSID hoặc page id).
type Participant struct {
	ID string `json:"id"`
}

// ReceivedMessage là message người dùng gửi đến page.
type ReceivedMessage struct {
	MID         string       `json:"mid,omitempty"`
	Text        string       `json:"text,omitempty"`
	QuickReply  *QuickReply  `json:"quick_reply,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment là file/vị trí đính kèm trong message.
type Attachment struct {
	Type    string            `json:"type"`
	Title   string            `json:"title,omitempty"`
	URL     string            `json:"url,omitempty"`
	Payload AttachmentPayload `json:"payload"`
}

// AttachmentPayload chứa dữ liệu của attachment; với type "location" có tọa độ.
type AttachmentPayload struct {
	URL         string       `json:"url,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Coordinates là tọa độ vị trí khách chia sẻ.
type Coordinates struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// QuickReply là payload khách bấm chọn từ danh sách quick reply.
type QuickReply struct {
	Payload string `json:"payload"`
}

// ====================================
// SEND API GỬI RA
// ====================================

// SendMessageRequest là body POST /me/messages của Send API.
type SendMessageRequest struct {
	Recipient Participant `json:"recipient"`
	Message   SendMessage `json:"message"`
}

// SendMessage là nội dung message gửi đi, kèm quick replies nếu có.
type SendMessage struct {
	Text         string            `json:"text"`
	Metadata     string            `json:"metadata,omitempty"`
	QuickReplies []QuickReplyOption `json:"quick_replies,omitempty"`
}

// QuickReplyOption là một lựa chọn quick reply gửi kèm message.
// ContentType "text" cần Title và Payload; "location" để trống cả hai.
type QuickReplyOption struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title,omitempty"`
	Payload     string `json:"payload,omitempty"`
}

// SendMessageResponse là response của Send API khi gửi thành công.
type SendMessageResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

// GraphProfile là profile người dùng lấy từ Graph API.
type GraphProfile struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	ProfilePic string `json:"profile_pic"`
	Locale     string `json:"locale"`
	Timezone   int    `json:"timezone"`
	Gender     string `json:"gender"`
}
