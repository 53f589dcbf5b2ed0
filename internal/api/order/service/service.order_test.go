// Package ordersvc - Test các hàm dựng filter/update cho chuyển trạng thái đơn hàng.
package ordersvc

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	ordermodels "pizza_commerce/internal/api/order/models"
)

func TestSelectionFilter_OnlyMatchesAwaitingSelection(t *testing.T) {
	filter := selectionFilter("psid-1")

	if filter["userData.recipientId"] != "psid-1" {
		t.Errorf("filter phải lọc theo recipientId, nhận được %v", filter["userData.recipientId"])
	}
	// Chỉ đơn đang chờ chọn pizza mới được cập nhật lựa chọn
	if filter["status"] != ordermodels.OrderStatusAwaitingSelection {
		t.Errorf("filter phải khớp status awaiting_selection, nhận được %v", filter["status"])
	}
}

func TestSelectionUpdate_AdvancesStatus(t *testing.T) {
	update := selectionUpdate("Funghi")

	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatal("update phải dùng $set")
	}
	if set["selection.pizza"] != "Funghi" {
		t.Errorf("phải set selection.pizza = Funghi, nhận được %v", set["selection.pizza"])
	}
	if set["status"] != ordermodels.OrderStatusAwaitingLocation {
		t.Errorf("sau khi chọn pizza đơn phải chuyển sang awaiting_location, nhận được %v", set["status"])
	}
}

func TestLocationFilter_OnlyMatchesAwaitingLocation(t *testing.T) {
	filter := locationFilter("psid-2")

	if filter["userData.recipientId"] != "psid-2" {
		t.Errorf("filter phải lọc theo recipientId, nhận được %v", filter["userData.recipientId"])
	}
	// Vị trí chỉ được gán cho đơn đã qua bước chọn pizza
	if filter["status"] != ordermodels.OrderStatusAwaitingLocation {
		t.Errorf("filter phải khớp status awaiting_location, nhận được %v", filter["status"])
	}
}

func TestLocationUpdate_CompletesOrder(t *testing.T) {
	update := locationUpdate("Nhà riêng", 10.762622, 106.660172)

	set, ok := update["$set"].(bson.M)
	if !ok {
		t.Fatal("update phải dùng $set")
	}
	if set["location.title"] != "Nhà riêng" {
		t.Errorf("phải set location.title, nhận được %v", set["location.title"])
	}
	if set["location.coordinates.lat"] != 10.762622 {
		t.Errorf("lat không đúng: %v", set["location.coordinates.lat"])
	}
	if set["location.coordinates.long"] != 106.660172 {
		t.Errorf("long không đúng: %v", set["location.coordinates.long"])
	}
	if set["status"] != ordermodels.OrderStatusCompleted {
		t.Errorf("sau khi có vị trí đơn phải completed, nhận được %v", set["status"])
	}
}
