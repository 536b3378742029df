// Package logrusmask 提供 logrus 钩子，在输出前对结构化字段脱敏。
package logrusmask

import (
	"github.com/sirupsen/logrus"

	"github.com/darkit/slogmask"
	"github.com/darkit/slogmask/event"
)

// Hook 把 entry.Data 中的结构体、指针、切片和映射替换为脱敏后的原生值
type Hook struct {
	conv   *slogmask.Converter
	levels []logrus.Level
}

// NewHook 创建钩子，levels 为空时作用于全部级别
func NewHook(conv *slogmask.Converter, levels ...logrus.Level) *Hook {
	if conv == nil {
		conv = slogmask.NewConverter()
	}
	if len(levels) == 0 {
		levels = logrus.AllLevels
	}
	return &Hook{conv: conv, levels: levels}
}

// Levels implements logrus.Hook.
func (h *Hook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook. 只替换需要解构的字段，不会返回错误。
func (h *Hook) Fire(entry *logrus.Entry) error {
	for k, v := range entry.Data {
		if _, ok := v.(error); ok {
			continue
		}
		val := h.conv.Convert(v)
		if _, scalar := val.(event.Scalar); scalar {
			continue
		}
		entry.Data[k] = event.ToPlain(val, h.conv.TypeTagKey())
	}
	return nil
}
