package slogmask

import (
	"context"
	"log/slog"
	"reflect"
)

// handler 是一个 slog 中间件，在记录交给下一个处理器之前，
// 把结构体、指针、切片和映射类型的属性值替换为脱敏后的结构化表示。
type handler struct {
	next slog.Handler
	conv *Converter
}

// NewHandler 创建脱敏处理器，conv 为 nil 时使用不带脱敏策略的默认转换器
func NewHandler(next slog.Handler, conv *Converter) slog.Handler {
	if conv == nil {
		conv = NewConverter()
	}
	return &handler{next: next, conv: conv}
}

// NewLogger 创建一个输出经过脱敏的 *slog.Logger
func NewLogger(next slog.Handler, conv *Converter) *slog.Logger {
	return slog.New(NewHandler(next, conv))
}

func (h *handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle 逐个转换记录中的属性，再交给下一个处理器
func (h *handler) Handle(ctx context.Context, r slog.Record) error {
	nr := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		nr.AddAttrs(h.conv.maskAttr(a))
		return true
	})
	return h.next.Handle(ctx, nr)
}

func (h *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.conv.maskAttr(a)
	}
	return &handler{next: h.next.WithAttrs(masked), conv: h.conv}
}

func (h *handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &handler{next: h.next.WithGroup(name), conv: h.conv}
}

// ReplaceAttr 可直接用作 slog.HandlerOptions.ReplaceAttr
func (c *Converter) ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	return c.maskAttr(a)
}

func (c *Converter) maskAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		masked := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			masked[i] = c.maskAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	case slog.KindAny:
		if v := a.Value.Any(); needsDestructure(v) {
			return slog.Attr{Key: a.Key, Value: c.Render(v)}
		}
	}
	return a
}

// needsDestructure 判断属性值是否需要解构：结构体、切片、数组、映射及指向它们的指针。
// error 和 []byte 保持原样交给下游处理器。
func needsDestructure(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(error); ok {
		return false
	}
	t := reflect.TypeOf(v)
	if t == bytesType {
		return false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Slice, reflect.Array, reflect.Map:
		return t != timeType
	}
	return false
}
