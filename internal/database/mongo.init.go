package database

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pizza_commerce/internal/global"
	"pizza_commerce/internal/logger"
)

// EnsureDatabaseAndCollections kiểm tra và tạo database + các collection nếu chưa tồn tại.
func EnsureDatabaseAndCollections(client *mongo.Client, dbName string) error {
	// Tạo 1 context tổng 30 giây để duyệt tất cả collections
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbList, err := client.ListDatabaseNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list databases: %w", err)
	}

	dbExists := false
	for _, name := range dbList {
		if name == dbName {
			dbExists = true
			break
		}
	}
	if !dbExists {
		logger.GetAppLogger().Infof("Database %s does not exist, will create automatically by creating collections", dbName)
	}

	db := client.Database(dbName)
	collections := []string{}
	v := reflect.ValueOf(global.MongoDB_ColNames)
	for i := 0; i < v.NumField(); i++ {
		collections = append(collections, v.Field(i).String())
	}

	collList, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, collectionName := range collections {
		exists := false
		for _, existingColl := range collList {
			if existingColl == collectionName {
				exists = true
				break
			}
		}
		if !exists {
			logger.GetAppLogger().Infof("Collection %s chưa tồn tại, tạo mới.", collectionName)
			if err := db.CreateCollection(ctx, collectionName); err != nil {
				return fmt.Errorf("failed to create collection %s: %w", collectionName, err)
			}
		}
	}

	logger.GetAppLogger().Infof("Database and collections are ensured in database: %s", dbName)
	return nil
}

// CreateIndexes đọc struct tag `index` trên model và tạo các index tương ứng.
// Hỗ trợ các dạng tag (phân cách bởi dấu chấm phẩy):
//   - "single:1" / "single:-1": index đơn tăng/giảm dần
//   - "unique": unique index (sparse để bỏ qua field không tồn tại)
//   - "text": text index
func CreateIndexes(ctx context.Context, collection *mongo.Collection, model interface{}) error {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}

		bsonField := strings.TrimSpace(strings.Split(field.Tag.Get("bson"), ",")[0])
		if bsonField == "" || bsonField == "-" {
			continue
		}

		for _, part := range strings.Split(tag, ";") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			var keys bson.D
			var indexName string
			opts := options.Index()

			switch {
			case strings.HasPrefix(part, "single"):
				order := 1
				if kv := strings.SplitN(part, ":", 2); len(kv) == 2 {
					if n, err := strconv.Atoi(kv[1]); err == nil {
						order = n
					}
				}
				keys = bson.D{{Key: bsonField, Value: order}}
				indexName = bsonField + "_single"
			case part == "unique":
				keys = bson.D{{Key: bsonField, Value: 1}}
				indexName = bsonField + "_unique"
				opts = opts.SetUnique(true).SetSparse(true)
			case part == "text":
				keys = bson.D{{Key: bsonField, Value: "text"}}
				indexName = bsonField + "_text"
			default:
				continue
			}

			opts = opts.SetName(indexName)
			if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts}); err != nil {
				return fmt.Errorf("không thể tạo index %s cho collection %s: %w", indexName, collection.Name(), err)
			}
		}
	}

	return nil
}
