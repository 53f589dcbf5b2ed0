// Package channels chứa các kênh gửi message ra ngoài.
package channels

import (
	"context"

	deliverymodels "pizza_commerce/internal/api/delivery/models"
	"pizza_commerce/internal/api/messenger/client"
)

// SendMessenger gửi một queue item qua Messenger Send API.
func SendMessenger(ctx context.Context, gc *client.GraphClient, item *deliverymodels.DeliveryQueueItem) error {
	return gc.SendMessage(ctx, item.RecipientID, item.MessageText, item.QuickReplies)
}
