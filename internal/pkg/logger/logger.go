// Package logger 构建应用统一的 slog.Logger。
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// NewDefault 根据配置的级别创建输出到 stdout 的文本日志。
// 未知级别回退到 info。
func NewDefault(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l})
	return slog.New(handler)
}
