// Package selflog 提供脱敏管线内部的自诊断输出通道。
//
// 自诊断消息（索引属性被跳过、属性访问器失败、递归深度超限等）只写入这里，
// 不进入常规日志流，也不会改变一次日志调用的结果。默认关闭。
package selflog

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
)

var (
	enabled atomic.Bool
	logger  atomic.Pointer[slog.Logger]
)

// Enable 开启自诊断，诊断消息以文本格式写入 w。w 为 nil 时等同于 Disable。
func Enable(w io.Writer) {
	if w == nil {
		Disable()
		return
	}
	EnableHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// EnableHandler 使用自定义处理器接收自诊断消息。
func EnableHandler(h slog.Handler) {
	if h == nil {
		Disable()
		return
	}
	logger.Store(slog.New(h).With("component", "slogmask"))
	enabled.Store(true)
}

// Disable 关闭自诊断。
func Disable() {
	enabled.Store(false)
}

// Enabled 报告自诊断是否开启。
func Enabled() bool {
	return enabled.Load()
}

// Warn 写入一条警告级别的诊断消息。通道关闭时什么也不做。
func Warn(msg string, args ...any) {
	if !enabled.Load() {
		return
	}
	l := logger.Load()
	if l == nil {
		return
	}
	l.Log(context.Background(), slog.LevelWarn, msg, args...)
}
