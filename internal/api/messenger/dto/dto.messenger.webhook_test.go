// Package dto - Test parse payload webhook thực tế từ Messenger Platform.
package dto

import (
	"encoding/json"
	"testing"
)

// Payload batch thực tế: một entry mang text message, một entry mang quick reply
// và location attachment.
const sampleWebhookPayload = `{
  "object": "page",
  "entry": [
    {
      "id": "247813712069353",
      "time": 1458692752478,
      "messaging": [
        {
          "sender": {"id": "1234567890"},
          "recipient": {"id": "247813712069353"},
          "timestamp": 1458692752478,
          "message": {
            "mid": "mid.1457764197618:41d102a3e1ae206a38",
            "text": "Hi"
          }
        }
      ]
    },
    {
      "id": "247813712069353",
      "time": 1458692752999,
      "messaging": [
        {
          "sender": {"id": "1234567890"},
          "recipient": {"id": "247813712069353"},
          "timestamp": 1458692752999,
          "message": {
            "mid": "mid.1457764197618:41d102a3e1ae206a39",
            "text": "Salami",
            "quick_reply": {"payload": "Salami"}
          }
        },
        {
          "sender": {"id": "1234567890"},
          "recipient": {"id": "247813712069353"},
          "timestamp": 1458692753100,
          "message": {
            "mid": "mid.1457764197618:41d102a3e1ae206a40",
            "attachments": [
              {
                "type": "location",
                "title": "User's Location",
                "payload": {
                  "coordinates": {"lat": 52.520008, "long": 13.404954}
                }
              }
            ]
          }
        }
      ]
    }
  ]
}`

func TestWebhookEvent_Unmarshal(t *testing.T) {
	var event WebhookEvent
	if err := json.Unmarshal([]byte(sampleWebhookPayload), &event); err != nil {
		t.Fatalf("không parse được payload: %v", err)
	}

	if event.Object != "page" {
		t.Errorf("object phải là page, nhận được %s", event.Object)
	}
	if len(event.Entry) != 2 {
		t.Fatalf("phải có 2 entry, nhận được %d", len(event.Entry))
	}

	// Entry 1: text message
	first := event.Entry[0].Messaging[0]
	if first.Sender.ID != "1234567890" {
		t.Errorf("sender.id không đúng: %s", first.Sender.ID)
	}
	if first.Message == nil || first.Message.Text != "Hi" {
		t.Error("message text phải là Hi")
	}
	if first.Message.QuickReply != nil {
		t.Error("text message không có quick_reply")
	}

	// Entry 2: quick reply + location
	if len(event.Entry[1].Messaging) != 2 {
		t.Fatalf("entry 2 phải có 2 messaging event, nhận được %d", len(event.Entry[1].Messaging))
	}
	quickReply := event.Entry[1].Messaging[0]
	if quickReply.Message.QuickReply == nil || quickReply.Message.QuickReply.Payload != "Salami" {
		t.Error("quick_reply.payload phải là Salami")
	}

	location := event.Entry[1].Messaging[1]
	if len(location.Message.Attachments) != 1 {
		t.Fatalf("phải có 1 attachment, nhận được %d", len(location.Message.Attachments))
	}
	attachment := location.Message.Attachments[0]
	if attachment.Type != "location" {
		t.Errorf("attachment type phải là location, nhận được %s", attachment.Type)
	}
	if attachment.Payload.Coordinates == nil {
		t.Fatal("location attachment phải có coordinates")
	}
	if attachment.Payload.Coordinates.Lat != 52.520008 || attachment.Payload.Coordinates.Long != 13.404954 {
		t.Errorf("tọa độ không đúng: %+v", attachment.Payload.Coordinates)
	}
}

func TestSendMessageRequest_Marshal(t *testing.T) {
	req := SendMessageRequest{
		Recipient: Participant{ID: "111"},
		Message: SendMessage{
			Text:     "Please send me your location!",
			Metadata: "DEVELOPER_DEFINED_METADATA",
			QuickReplies: []QuickReplyOption{
				{ContentType: "location"},
			},
		},
	}

	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("không marshal được: %v", err)
	}

	var decoded map[string]interface{}
	json.Unmarshal(raw, &decoded)

	message := decoded["message"].(map[string]interface{})
	quickReplies := message["quick_replies"].([]interface{})
	locationReply := quickReplies[0].(map[string]interface{})

	if locationReply["content_type"] != "location" {
		t.Errorf("content_type phải là location, nhận được %v", locationReply["content_type"])
	}
	// Quick reply location không được mang title/payload rỗng
	if _, ok := locationReply["title"]; ok {
		t.Error("quick reply location không được có title")
	}
	if _, ok := locationReply["payload"]; ok {
		t.Error("quick reply location không được có payload")
	}
}
