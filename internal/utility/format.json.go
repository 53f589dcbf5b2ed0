package utility

import (
	"go.mongodb.org/mongo-driver/bson"
)

// ToMap chuyển đổi một struct (theo bson tags) thành map[string]interface{}.
// Dùng cho partial update và thêm timestamps trước khi ghi vào MongoDB.
func ToMap(data interface{}) (map[string]interface{}, error) {
	// Nếu đã là map, trả về luôn
	if m, ok := data.(map[string]interface{}); ok {
		return m, nil
	}

	raw, err := bson.Marshal(data)
	if err != nil {
		return nil, err
	}

	var result map[string]interface{}
	if err := bson.Unmarshal(raw, &result); err != nil {
		return nil, err
	}

	// _id zero value làm insert sinh ObjectID rỗng, bỏ đi để driver tự sinh
	if id, ok := result["_id"]; ok {
		if s, ok := id.(string); ok && s == "" {
			delete(result, "_id")
		}
	}

	return result, nil
}
