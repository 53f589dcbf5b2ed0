// Package client - Test GraphClient với httptest server giả lập Graph API.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	messengerdto "pizza_commerce/internal/api/messenger/dto"
	"pizza_commerce/config"
)

func newTestClient(baseURL string) *GraphClient {
	return NewGraphClient(&config.Configuration{
		GraphAPIBaseURL:          baseURL,
		MessengerPageAccessToken: "test-token",
	})
}

func TestSendMessage_BodyShape(t *testing.T) {
	var gotPath, gotToken string
	var gotBody messengerdto.SendMessageRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.URL.Query().Get("access_token")
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"recipient_id":"111","message_id":"mid.abc"}`))
	}))
	defer srv.Close()

	gc := newTestClient(srv.URL)
	err := gc.SendMessage(context.Background(), "111", "Hi An, please choose which Pizza do you want to order:", []messengerdto.QuickReplyOption{
		{ContentType: "text", Title: "Salami", Payload: "Salami"},
		{ContentType: "text", Title: "Speciale", Payload: "Speciale"},
		{ContentType: "text", Title: "Funghi", Payload: "Funghi"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/me/messages", gotPath)
	assert.Equal(t, "test-token", gotToken)
	assert.Equal(t, "111", gotBody.Recipient.ID)
	assert.Equal(t, "Hi An, please choose which Pizza do you want to order:", gotBody.Message.Text)
	assert.Equal(t, "DEVELOPER_DEFINED_METADATA", gotBody.Message.Metadata)
	require.Len(t, gotBody.Message.QuickReplies, 3)
	assert.Equal(t, "Salami", gotBody.Message.QuickReplies[0].Payload)
}

func TestSendMessage_NoQuickReplies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		// Message text đơn không được mang key quick_replies
		assert.NotContains(t, string(raw), "quick_replies")
		w.Write([]byte(`{"recipient_id":"111","message_id":"mid.abc"}`))
	}))
	defer srv.Close()

	gc := newTestClient(srv.URL)
	err := gc.SendMessage(context.Background(), "111", "Thanks, your order is on the way", nil)
	require.NoError(t, err)
}

func TestSendMessage_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token"}}`))
	}))
	defer srv.Close()

	gc := newTestClient(srv.URL)
	err := gc.SendMessage(context.Background(), "111", "Hi", nil)
	assert.Error(t, err, "Send API trả lỗi thì SendMessage phải trả error")
}

func TestGetUserProfile(t *testing.T) {
	var gotPath, gotFields, gotToken string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotFields = r.URL.Query().Get("fields")
		gotToken = r.URL.Query().Get("access_token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"first_name":"An","last_name":"Nguyen","profile_pic":"http://example.com/p.jpg","locale":"vi_VN","timezone":7,"gender":"male"}`))
	}))
	defer srv.Close()

	gc := newTestClient(srv.URL)
	profile, err := gc.GetUserProfile(context.Background(), "12345")
	require.NoError(t, err)

	assert.Equal(t, "/12345", gotPath)
	assert.Equal(t, "first_name,last_name,profile_pic,locale,timezone,gender", gotFields)
	assert.Equal(t, "test-token", gotToken)
	assert.Equal(t, "An", profile.FirstName)
	assert.Equal(t, "Nguyen", profile.LastName)
	assert.Equal(t, "vi_VN", profile.Locale)
	assert.Equal(t, 7, profile.Timezone)
	assert.Equal(t, "male", profile.Gender)
}

func TestGetUserProfile_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"Unsupported get request"}}`))
	}))
	defer srv.Close()

	gc := newTestClient(srv.URL)
	profile, err := gc.GetUserProfile(context.Background(), "unknown")
	assert.Error(t, err)
	assert.Nil(t, profile)
}
