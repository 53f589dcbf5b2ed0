package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng.
// Struct này được truyền tường minh vào các constructor (handler, client,
// processor) thay vì đọc từ biến toàn cục.
type Configuration struct {
	Address string `env:"ADDRESS" envDefault:"8080"` // Port server lắng nghe

	// Messenger Platform Configuration
	MessengerAppSecret       string `env:"MESSENGER_APP_SECRET,required"`       // App secret để verify chữ ký x-hub-signature
	MessengerValidationToken string `env:"MESSENGER_VALIDATION_TOKEN,required"` // Token xác minh subscription (GET /webhook)
	MessengerPageAccessToken string `env:"MESSENGER_PAGE_ACCESS_TOKEN,required"` // Page access token để gọi Graph API
	ServerURL                string `env:"SERVER_URL,required"`                  // URL công khai của server (đăng ký webhook)
	GraphAPIBaseURL          string `env:"GRAPH_API_BASE_URL" envDefault:"https://graph.facebook.com/v2.6"` // Base URL Graph API

	// MongoDB Configuration
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`        // URL kết nối cơ sở dữ liệu
	MongoDB_DBName        string `env:"MONGODB_DBNAME" envDefault:"pizza_commerce"` // Tên cơ sở dữ liệu

	// CORS Configuration
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials

	// Rate Limit Configuration
	RateLimit_Max     int  `env:"RATE_LIMIT_MAX" envDefault:"100"`      // Số request tối đa trong window (0 = disable rate limit)
	RateLimit_Window  int  `env:"RATE_LIMIT_WINDOW" envDefault:"60"`    // Thời gian window (giây)
	RateLimit_Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"` // Bật/tắt rate limiting

	// TLS/HTTPS Configuration
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"` // Bật HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"`                 // Đường dẫn đến file certificate (.crt hoặc .pem)
	TLSKeyFile  string `env:"TLS_KEY_FILE"`                  // Đường dẫn đến file private key (.key)

	// Delivery Worker Configuration
	DeliveryTickSeconds int `env:"DELIVERY_TICK_SECONDS" envDefault:"5"` // Chu kỳ quét delivery queue (giây)
	DeliveryBatchSize   int `env:"DELIVERY_BATCH_SIZE" envDefault:"10"`  // Số items xử lý mỗi lần quét
	DeliveryMaxRetries  int `env:"DELIVERY_MAX_RETRIES" envDefault:"3"`  // Số lần retry tối đa cho mỗi item
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env, đi lên dần thư mục cha
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			envPath := filepath.Join(envDir, fmt.Sprintf("%s.env", env))
			return envPath
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env được cung cấp
func NewConfig(files ...string) *Configuration {
	envPath := getEnvPath()
	if envPath == "" {
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		fmt.Printf("Không tìm thấy thư mục config/env\n")
		return nil
	}

	err := godotenv.Load(envPath)
	if err != nil {
		fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		return nil
	}

	cfg := Configuration{}
	err = env.Parse(&cfg)
	if err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
