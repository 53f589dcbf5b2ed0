package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	appLogger *logrus.Logger
	appHook   *AsyncHook
	initOnce  sync.Once
	mu        sync.RWMutex
)

// Init khởi tạo app logger với cấu hình cho trước.
// Truyền nil để dùng DefaultConfig (tự đọc environment variables).
func Init(cfg *LogConfig) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logger := logrus.New()

	// Level
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Formatter
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	// Writers theo cấu hình output: file, stdout, both
	var writers []io.Writer
	if cfg.Output == "stdout" || cfg.Output == "both" {
		writers = append(writers, os.Stdout)
	}
	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(cfg.LogPath, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory %s: %w", cfg.LogPath, err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogPath, cfg.AppFile),
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	// Logger tự nó không ghi trực tiếp, AsyncHook ghi vào các writers
	logger.SetOutput(io.Discard)
	logger.AddHook(NewFilterHook(cfg))
	hook := NewAsyncHookWithWriters(writers, 1000)
	logger.AddHook(hook)

	mu.Lock()
	defer mu.Unlock()
	if appHook != nil {
		_ = appHook.Close()
	}
	appLogger = logger
	appHook = hook
	return nil
}

// GetAppLogger trả về app logger, tự init với cấu hình mặc định nếu chưa Init.
func GetAppLogger() *logrus.Logger {
	mu.RLock()
	if appLogger != nil {
		defer mu.RUnlock()
		return appLogger
	}
	mu.RUnlock()

	initOnce.Do(func() {
		_ = Init(nil)
	})

	mu.RLock()
	defer mu.RUnlock()
	return appLogger
}

// Close đóng async hook, đợi flush hết log entries.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if appHook == nil {
		return nil
	}
	err := appHook.Close()
	appHook = nil
	return err
}
