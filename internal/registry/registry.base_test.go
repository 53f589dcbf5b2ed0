// Package registry - Test các thao tác thread-safe của generic registry.
package registry

import (
	"errors"
	"testing"
)

func TestRegister_NewAndOverwrite(t *testing.T) {
	r := NewRegistry[int]()

	isNew, err := r.Register("orders", 1)
	if err != nil {
		t.Fatalf("Register lỗi: %v", err)
	}
	if !isNew {
		t.Error("item đầu tiên phải là mới")
	}

	isNew, err = r.Register("orders", 2)
	if err != nil {
		t.Fatalf("Register lỗi: %v", err)
	}
	if isNew {
		t.Error("ghi đè item cũ phải trả isNew=false")
	}

	item, exists := r.Get("orders")
	if !exists || item != 2 {
		t.Errorf("Get phải trả item mới nhất, nhận được %d (exists=%v)", item, exists)
	}
}

func TestRegister_EmptyName(t *testing.T) {
	r := NewRegistry[int]()
	if _, err := r.Register("", 1); err == nil {
		t.Error("name rỗng phải trả lỗi")
	}
}

func TestGetOrCreate(t *testing.T) {
	r := NewRegistry[string]()
	creatorCalls := 0
	creator := func() (string, error) {
		creatorCalls++
		return "created", nil
	}

	item, err := r.GetOrCreate("webhook_logs", creator)
	if err != nil {
		t.Fatalf("GetOrCreate lỗi: %v", err)
	}
	if item != "created" {
		t.Errorf("item mới phải do creator tạo, nhận được %q", item)
	}

	// Lần thứ hai phải trả item có sẵn, không gọi lại creator
	item, err = r.GetOrCreate("webhook_logs", creator)
	if err != nil {
		t.Fatalf("GetOrCreate lần hai lỗi: %v", err)
	}
	if item != "created" || creatorCalls != 1 {
		t.Errorf("creator phải được gọi đúng 1 lần, đã gọi %d lần", creatorCalls)
	}
}

func TestGetOrCreate_CreatorError(t *testing.T) {
	r := NewRegistry[string]()
	wantErr := errors.New("tạo thất bại")

	_, err := r.GetOrCreate("broken", func() (string, error) { return "", wantErr })
	if err == nil || !errors.Is(err, wantErr) {
		t.Errorf("lỗi của creator phải được wrap và trả về, nhận được %v", err)
	}
	if _, exists := r.Get("broken"); exists {
		t.Error("creator lỗi thì không được lưu item vào registry")
	}
}

func TestUpdate(t *testing.T) {
	r := NewRegistry[int]()
	r.Register("counter", 1)

	if err := r.Update("counter", func(v int) (int, error) { return v + 1, nil }); err != nil {
		t.Fatalf("Update lỗi: %v", err)
	}
	if item, _ := r.Get("counter"); item != 2 {
		t.Errorf("Update phải lưu giá trị mới, nhận được %d", item)
	}

	if err := r.Update("missing", func(v int) (int, error) { return v, nil }); err == nil {
		t.Error("Update item không tồn tại phải trả lỗi")
	}
}

func TestClear(t *testing.T) {
	r := NewRegistry[int]()
	r.Register("orders", 1)

	cleaned := false
	deleted, err := r.Clear("orders", func(v int) error {
		cleaned = true
		return nil
	})
	if err != nil {
		t.Fatalf("Clear lỗi: %v", err)
	}
	if !deleted || !cleaned {
		t.Errorf("Clear phải gọi cleanup rồi xóa item (deleted=%v, cleaned=%v)", deleted, cleaned)
	}
	if _, exists := r.Get("orders"); exists {
		t.Error("item đã Clear không được còn trong registry")
	}

	// Clear item không tồn tại không phải là lỗi
	deleted, err = r.Clear("orders", nil)
	if err != nil || deleted {
		t.Errorf("Clear item không tồn tại phải trả (false, nil), nhận được (%v, %v)", deleted, err)
	}
}

func TestClearAll(t *testing.T) {
	r := NewRegistry[int]()
	r.Register("a", 1)
	r.Register("b", 2)

	count, err := r.ClearAll(nil)
	if err != nil {
		t.Fatalf("ClearAll lỗi: %v", err)
	}
	if count != 2 {
		t.Errorf("ClearAll phải trả số item đã xóa, nhận được %d", count)
	}
	if _, exists := r.Get("a"); exists {
		t.Error("registry phải trống sau ClearAll")
	}
}
