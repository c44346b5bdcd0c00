package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Logger 结构化日志，带固定的 component 字段
// TUI 运行时终端被占用，所以日志只写文件
type Logger struct {
	base      *slog.Logger
	inner     *slog.Logger
	component string
}

// NewLogger 创建写入 w 的JSON日志，w 为 nil 时丢弃所有输出
func NewLogger(component string, w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = io.Discard
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return newLogger(slog.New(handler), component)
}

func newLogger(base *slog.Logger, component string) *Logger {
	return &Logger{
		base:      base,
		inner:     base.With(slog.String("component", component)),
		component: component,
	}
}

// NopLogger 返回不输出任何内容的日志
func NopLogger() *Logger {
	return NewLogger("nop", io.Discard, slog.LevelError)
}

// OpenLogFile 以追加方式打开日志文件，返回日志和关闭函数
func OpenLogFile(component, path string, level slog.Level) (*Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("创建日志目录失败: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("打开日志文件失败: %w", err)
	}
	return NewLogger(component, f, level), f.Close, nil
}

// ParseLevel 解析 debug|info|warn|error，未知值按 info 处理
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With 返回附加了字段的新日志
func (l *Logger) With(key string, value any) *Logger {
	return newLogger(l.base.With(slog.Any(key, value)), l.component)
}

// Named 返回 component 不同的子日志
func (l *Logger) Named(component string) *Logger {
	return newLogger(l.base, component)
}

func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
