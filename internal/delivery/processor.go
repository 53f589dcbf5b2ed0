package delivery

import (
	"context"
	"fmt"
	"math"
	"time"

	basesvc "pizza_commerce/internal/api/base/service"
	deliverymodels "pizza_commerce/internal/api/delivery/models"
	deliverysvc "pizza_commerce/internal/api/delivery/service"
	"pizza_commerce/internal/api/messenger/client"
	"pizza_commerce/config"
	"pizza_commerce/internal/delivery/channels"
	"pizza_commerce/internal/logger"
	"pizza_commerce/internal/utility"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Processor xử lý queue items - chỉ xử lý delivery (như "bưu điện")
// Nhận: recipient + content đã chuẩn bị sẵn, gửi qua Messenger Send API
type Processor struct {
	queueService   *deliverysvc.DeliveryQueueService
	historyService *deliverysvc.DeliveryHistoryService
	graphClient    *client.GraphClient
	tickInterval   time.Duration
	batchSize      int
}

// NewProcessor tạo mới Processor từ config
func NewProcessor(cfg *config.Configuration, gc *client.GraphClient) (*Processor, error) {
	queueService, err := deliverysvc.NewDeliveryQueueService()
	if err != nil {
		return nil, fmt.Errorf("failed to create queue service: %w", err)
	}

	historyService, err := deliverysvc.NewDeliveryHistoryService()
	if err != nil {
		return nil, fmt.Errorf("failed to create history service: %w", err)
	}

	tickSeconds := cfg.DeliveryTickSeconds
	if tickSeconds <= 0 {
		tickSeconds = 5
	}
	batchSize := cfg.DeliveryBatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	return &Processor{
		queueService:   queueService,
		historyService: historyService,
		graphClient:    gc,
		tickInterval:   time.Duration(tickSeconds) * time.Second,
		batchSize:      batchSize,
	}, nil
}

// handleRetryOrFail xử lý retry logic cho mọi error case
// Nếu chưa hết retry: tăng retryCount, set nextRetryAt, reset về pending
// Nếu đã hết retry: đánh dấu failed và xóa khỏi queue
func (p *Processor) handleRetryOrFail(ctx context.Context, item *deliverymodels.DeliveryQueueItem, err error) error {
	log := logger.GetAppLogger()

	// Tăng retryCount
	item.RetryCount++

	if item.RetryCount < item.MaxRetries {
		// Chưa hết retry, schedule retry với backoff 2^retryCount giây
		item.Status = "pending"
		backoffSeconds := int64(math.Pow(2, float64(item.RetryCount)))
		nextRetryAt := utility.CurrentTimeInMilli() + backoffSeconds*1000
		item.NextRetryAt = &nextRetryAt

		updateData := basesvc.UpdateData{
			Set: map[string]interface{}{
				"status":      item.Status,
				"retryCount":  item.RetryCount,
				"nextRetryAt": item.NextRetryAt,
				"error":       err.Error(),
			},
		}
		_, updateErr := p.queueService.UpdateOne(ctx, bson.M{"_id": item.ID}, updateData, nil)
		if updateErr != nil {
			log.WithError(updateErr).WithField("queueItemId", item.ID.Hex()).Error("📦 [DELIVERY] Failed to update queue item for retry")
			return fmt.Errorf("failed to update queue item for retry: %w", updateErr)
		}

		return err // Return error để caller biết cần retry
	}

	// Đã hết số lần retry, đánh dấu failed và xóa khỏi queue
	updateData := basesvc.UpdateData{
		Set: map[string]interface{}{
			"status": "failed",
			"error":  err.Error(),
		},
	}
	_, updateErr := p.queueService.UpdateOne(ctx, bson.M{"_id": item.ID}, updateData, nil)
	if updateErr != nil {
		log.WithError(updateErr).WithField("queueItemId", item.ID.Hex()).Error("📦 [DELIVERY] Failed to mark queue item as failed")
		return fmt.Errorf("failed to mark queue item as failed: %w", updateErr)
	}

	// Xóa queue item (cleanup)
	deleteErr := p.queueService.DeleteOne(ctx, bson.M{"_id": item.ID})
	if deleteErr != nil {
		log.WithError(deleteErr).WithField("queueItemId", item.ID.Hex()).Warn("📦 [DELIVERY] Failed to delete failed queue item (đã đánh dấu failed, sẽ không được filter ra nữa)")
	}

	return fmt.Errorf("max retries exceeded: %w", err)
}

// ProcessQueueItem xử lý một queue item - gửi message và ghi history
func (p *Processor) ProcessQueueItem(ctx context.Context, item *deliverymodels.DeliveryQueueItem) error {
	log := logger.GetAppLogger()

	// 1. Validate người nhận
	if item.RecipientID == "" {
		err := fmt.Errorf("recipientId is empty")
		log.WithFields(map[string]interface{}{
			"queueItemId": item.ID.Hex(),
		}).Error("📦 [DELIVERY] Queue item có recipientId rỗng")
		return p.handleRetryOrFail(ctx, item, err)
	}

	// 2. Tạo history record (trước khi gửi)
	historyID := primitive.NewObjectID()
	history := deliverymodels.DeliveryHistory{
		ID:          historyID,
		QueueItemID: item.ID,
		RecipientID: item.RecipientID,
		Status:      "pending",
		Content:     item.MessageText,
		RetryCount:  item.RetryCount,
		CreatedAt:   utility.CurrentTimeInMilli(),
	}

	// 3. Gửi message qua Messenger
	log.WithField("queueItemId", item.ID.Hex()).Debugf("📦 [DELIVERY] Đang gửi queue item: %s", utility.PrettyPrint(item))
	sendErr := channels.SendMessenger(ctx, p.graphClient, item)
	if sendErr != nil {
		history.Status = "failed"
		history.Error = sendErr.Error()
		history.SentAt = nil
	} else {
		history.Status = "sent"
		now := utility.CurrentTimeInMilli()
		history.SentAt = &now
	}

	// 4. Lưu history
	if _, err := p.historyService.InsertOne(ctx, history); err != nil {
		log.WithError(err).WithField("historyId", historyID.Hex()).Error("📦 [DELIVERY] Failed to save history")
		return p.handleRetryOrFail(ctx, item, fmt.Errorf("failed to save history: %w", err))
	}

	// 5. Xử lý kết quả gửi
	if sendErr != nil {
		return p.handleRetryOrFail(ctx, item, sendErr)
	}

	// Gửi thành công, xóa queue item
	if err := p.queueService.DeleteOne(ctx, bson.M{"_id": item.ID}); err != nil {
		log.WithError(err).WithField("queueItemId", item.ID.Hex()).Warn("📦 [DELIVERY] Failed to delete completed queue item")
	}
	return nil
}

// StartCleanupJob bắt đầu background job để dọn dẹp items bị kẹt
func (p *Processor) StartCleanupJob(ctx context.Context) {
	cleanupInterval := 1 * time.Minute // Chạy mỗi 1 phút
	staleMinutes := 5                  // Items processing quá 5 phút được coi là stuck
	batchSize := 50                    // Xử lý tối đa 50 items mỗi lần

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log := logger.GetAppLogger()

				// Tìm items bị kẹt
				stuckItems, err := p.queueService.FindStuckItems(ctx, staleMinutes, batchSize)
				if err != nil {
					log.WithError(err).Error("📦 [CLEANUP] Failed to find stuck queue items")
					continue
				}

				for _, item := range stuckItems {
					func() {
						defer func() {
							if r := recover(); r != nil {
								logger.GetAppLogger().WithFields(map[string]interface{}{
									"panic":       r,
									"queueItemId": item.ID.Hex(),
								}).Error("📦 [CLEANUP] Panic khi cleanup item")
							}
						}()

						if item.RecipientID == "" {
							// Item thiếu người nhận, đánh dấu failed và xóa
							log.WithField("queueItemId", item.ID.Hex()).Warn("📦 [CLEANUP] Item có recipientId rỗng, đánh dấu failed và xóa")
							updateData := basesvc.UpdateData{
								Set: map[string]interface{}{
									"status": "failed",
									"error":  "recipientId is empty (cleaned up by cleanup job)",
								},
							}
							_, err := p.queueService.UpdateOne(ctx, bson.M{"_id": item.ID}, updateData, nil)
							if err != nil {
								log.WithError(err).WithField("queueItemId", item.ID.Hex()).Error("📦 [CLEANUP] Failed to mark item as failed")
							} else {
								p.queueService.DeleteOne(ctx, bson.M{"_id": item.ID})
							}
						} else if item.Status == "processing" {
							// Item đang processing quá lâu, reset về pending để retry
							log.WithField("queueItemId", item.ID.Hex()).Warn("📦 [CLEANUP] Item processing quá lâu, reset về pending")
							updateData := basesvc.UpdateData{
								Set: map[string]interface{}{
									"status":      "pending",
									"nextRetryAt": nil, // Reset nextRetryAt để có thể xử lý ngay
								},
							}
							_, err := p.queueService.UpdateOne(ctx, bson.M{"_id": item.ID}, updateData, nil)
							if err != nil {
								log.WithError(err).WithField("queueItemId", item.ID.Hex()).Error("📦 [CLEANUP] Failed to reset stale item to pending")
							}
						}
					}()
				}

				// Cleanup items failed cũ (quá 7 ngày)
				if _, err := p.queueService.CleanupFailedItems(ctx, 7); err != nil {
					log.WithError(err).Error("📦 [CLEANUP] Failed to cleanup old failed items")
				}
			}
		}
	}()
}

// Start bắt đầu background worker để xử lý queue
func (p *Processor) Start(ctx context.Context) {
	maxRetryDelay := 60 * time.Second
	retryDelay := 5 * time.Second

	// Khởi động cleanup job
	p.StartCleanupJob(ctx)

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.GetAppLogger().WithFields(map[string]interface{}{
						"panic": r,
					}).Error("📦 [DELIVERY] Processor panic, sẽ tự khởi động lại sau khi delay")
					time.Sleep(retryDelay)
					retryDelay *= 2
					if retryDelay > maxRetryDelay {
						retryDelay = maxRetryDelay
					}
				} else {
					retryDelay = 5 * time.Second
				}
			}()

			ticker := time.NewTicker(p.tickInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					log := logger.GetAppLogger()
					items, err := p.queueService.FindPending(ctx, p.batchSize)
					if err != nil {
						log.WithError(err).Error("📦 [DELIVERY] Failed to find pending queue items")
						continue
					}

					if len(items) == 0 {
						continue
					}

					for _, item := range items {
						// Nếu item đang processing (stale), reset về pending trước
						if item.Status == "processing" {
							ids := []interface{}{item.ID}
							if err = p.queueService.UpdateStatus(ctx, ids, "pending"); err != nil {
								log.WithError(err).WithField("queueItemId", item.ID.Hex()).Error("📦 [DELIVERY] Failed to reset stale item to pending")
								continue
							}
							item.Status = "pending"
						}

						ids := []interface{}{item.ID}
						if err = p.queueService.UpdateStatus(ctx, ids, "processing"); err != nil {
							log.WithError(err).WithField("queueItemId", item.ID.Hex()).Error("📦 [DELIVERY] Failed to update queue item status")
							continue
						}

						func() {
							defer func() {
								if r := recover(); r != nil {
									logger.GetAppLogger().WithFields(map[string]interface{}{
										"panic":       r,
										"queueItemId": item.ID.Hex(),
									}).Error("📦 [DELIVERY] Panic khi xử lý queue item")
									// Reset về pending để retry sau
									updateData := basesvc.UpdateData{
										Set: map[string]interface{}{
											"status": "pending",
										},
									}
									p.queueService.UpdateOne(ctx, bson.M{"_id": item.ID}, updateData, nil)
								}
							}()

							if err = p.ProcessQueueItem(ctx, &item); err != nil {
								log.WithError(err).WithFields(map[string]interface{}{
									"queueItemId": item.ID.Hex(),
									"retryCount":  item.RetryCount,
								}).Error("📦 [DELIVERY] Failed to process queue item")

								// Nếu item vẫn còn và đang ở processing, reset về pending để retry
								existingItem, findErr := p.queueService.FindOneById(ctx, item.ID)
								if findErr == nil && existingItem.Status == "processing" {
									updateData := basesvc.UpdateData{
										Set: map[string]interface{}{
											"status": "pending",
										},
									}
									if _, updateErr := p.queueService.UpdateOne(ctx, bson.M{"_id": item.ID}, updateData, nil); updateErr != nil {
										log.WithError(updateErr).WithField("queueItemId", item.ID.Hex()).Error("📦 [DELIVERY] Failed to reset item to pending after error")
									}
								}
							}
						}()
					}
				}
			}
		}()

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}
