// Package client chứa client gọi Facebook Graph API (Send API + user profile).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	messengerdto "pizza_commerce/internal/api/messenger/dto"
	"pizza_commerce/config"
	"pizza_commerce/internal/common"
	"pizza_commerce/internal/logger"
)

// GraphClient là client gọi Facebook Graph API cho một page.
// Token và base URL được truyền vào từ config lúc khởi tạo, không đọc từ global.
type GraphClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewGraphClient tạo mới GraphClient từ config.
func NewGraphClient(cfg *config.Configuration) *GraphClient {
	return &GraphClient{
		baseURL:     cfg.GraphAPIBaseURL,
		accessToken: cfg.MessengerPageAccessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SendMessage gửi một message text (kèm quick replies nếu có) đến người dùng qua Send API.
func (gc *GraphClient) SendMessage(ctx context.Context, recipientID string, text string, quickReplies []messengerdto.QuickReplyOption) error {
	log := logger.GetAppLogger()

	payload := messengerdto.SendMessageRequest{
		Recipient: messengerdto.Participant{ID: recipientID},
		Message: messengerdto.SendMessage{
			Text:         text,
			Metadata:     "DEVELOPER_DEFINED_METADATA",
			QuickReplies: quickReplies,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	sendURL := fmt.Sprintf("%s/me/messages?access_token=%s", gc.baseURL, url.QueryEscape(gc.accessToken))

	req, err := http.NewRequestWithContext(ctx, "POST", sendURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := gc.httpClient.Do(req)
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"recipientId": recipientID,
		}).Error("🍕 [GRAPH] Lỗi khi gọi Send API")
		return common.NewError(common.ErrCodeGraphSend, "Lỗi khi gọi Send API", common.StatusServiceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.WithFields(map[string]interface{}{
			"recipientId": recipientID,
			"statusCode":  resp.StatusCode,
			"response":    string(bodyBytes),
		}).Error("🍕 [GRAPH] Send API trả về lỗi")
		return common.NewError(
			common.ErrCodeGraphSend,
			fmt.Sprintf("Send API trả về status %d", resp.StatusCode),
			common.StatusServiceUnavailable,
			string(bodyBytes),
		)
	}

	var sendResp messengerdto.SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&sendResp); err == nil && sendResp.MessageID != "" {
		log.WithFields(map[string]interface{}{
			"recipientId": sendResp.RecipientID,
			"messageId":   sendResp.MessageID,
		}).Info("🍕 [GRAPH] Gửi message thành công")
	}

	return nil
}

// GetUserProfile lấy profile người dùng từ Graph API theo PSID.
func (gc *GraphClient) GetUserProfile(ctx context.Context, userID string) (*messengerdto.GraphProfile, error) {
	log := logger.GetAppLogger()

	profileURL := fmt.Sprintf(
		"%s/%s?fields=first_name,last_name,profile_pic,locale,timezone,gender&access_token=%s",
		gc.baseURL, url.PathEscape(userID), url.QueryEscape(gc.accessToken),
	)

	req, err := http.NewRequestWithContext(ctx, "GET", profileURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := gc.httpClient.Do(req)
	if err != nil {
		log.WithError(err).WithFields(map[string]interface{}{
			"userId": userID,
		}).Error("🍕 [GRAPH] Lỗi khi lấy user profile")
		return nil, common.NewError(common.ErrCodeGraphProfile, "Lỗi khi lấy user profile", common.StatusServiceUnavailable, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.WithFields(map[string]interface{}{
			"userId":     userID,
			"statusCode": resp.StatusCode,
			"response":   string(bodyBytes),
		}).Error("🍕 [GRAPH] Graph API trả về lỗi khi lấy profile")
		return nil, common.NewError(
			common.ErrCodeGraphProfile,
			fmt.Sprintf("Graph API trả về status %d", resp.StatusCode),
			common.StatusServiceUnavailable,
			string(bodyBytes),
		)
	}

	var profile messengerdto.GraphProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, common.ErrInvalidFormat
	}

	return &profile, nil
}
