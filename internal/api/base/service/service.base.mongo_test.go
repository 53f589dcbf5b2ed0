// Package basesvc - Test ToUpdateData chuyển đổi các dạng input thành UpdateData.
package basesvc

import (
	"testing"
)

func TestToUpdateData_PlainMapWrappedInSet(t *testing.T) {
	update, err := ToUpdateData(map[string]interface{}{"status": "pending"})
	if err != nil {
		t.Fatalf("ToUpdateData lỗi: %v", err)
	}
	if update.Set == nil {
		t.Fatal("map thường phải được wrap trong $set")
	}
	if update.Set["status"] != "pending" {
		t.Errorf("giá trị trong $set không đúng: %v", update.Set["status"])
	}
	if update.Unset != nil || update.Push != nil {
		t.Error("các operator khác phải để trống")
	}
}

func TestToUpdateData_ExistingOperators(t *testing.T) {
	update, err := ToUpdateData(map[string]interface{}{
		"$set":   map[string]interface{}{"status": "failed"},
		"$unset": map[string]interface{}{"nextRetryAt": ""},
	})
	if err != nil {
		t.Fatalf("ToUpdateData lỗi: %v", err)
	}
	if update.Set["status"] != "failed" {
		t.Errorf("$set phải được giữ nguyên, nhận được %v", update.Set)
	}
	if update.Unset == nil {
		t.Error("$unset phải được giữ nguyên")
	}
}

func TestToUpdateData_PassthroughUpdateData(t *testing.T) {
	original := &UpdateData{Set: map[string]interface{}{"retryCount": 2}}
	update, err := ToUpdateData(original)
	if err != nil {
		t.Fatalf("ToUpdateData lỗi: %v", err)
	}
	if update != original {
		t.Error("UpdateData có sẵn phải được return trực tiếp")
	}
}
