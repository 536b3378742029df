// Package slogmask 在 log/slog 之上提供按属性名脱敏的结构化解构。
//
// 被捕获的对象先由注册的解构策略（通常是 mask.Policy）转换成 event.Value，
// 再交给下游 slog.Handler 输出。名称命中脱敏列表的属性被替换为固定文本，
// 其余可读属性原样递归输出。
package slogmask

import (
	"encoding"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"time"

	"github.com/darkit/slogmask/event"
	"github.com/darkit/slogmask/mask"
	"github.com/darkit/slogmask/selflog"
)

// DefaultMaxDepth 默认的最大解构深度
const DefaultMaxDepth = 10

var (
	timeType  = reflect.TypeOf(time.Time{})
	bytesType = reflect.TypeOf([]byte(nil))
)

// Converter 宿主侧的属性值工厂，实现 event.PropertyValueFactory。
// 依次询问注册的解构策略，都不处理时使用内置规则：
// 集合逐个元素转换，结构体输出全部导出字段。
type Converter struct {
	policies   []event.DestructuringPolicy
	fallback   *mask.Policy
	maxDepth   int
	typeTagKey string
}

// NewConverter 使用给定策略和默认深度创建转换器
func NewConverter(policies ...event.DestructuringPolicy) *Converter {
	return &Converter{
		policies: slices.Clone(policies),
		fallback: mask.NewPolicyFor(),
		maxDepth: DefaultMaxDepth,
	}
}

// MaxDepth 返回最大解构深度
func (c *Converter) MaxDepth() int {
	return c.maxDepth
}

// TypeTagKey 返回输出类型名时使用的键，为空表示不输出
func (c *Converter) TypeTagKey() string {
	return c.typeTagKey
}

// Convert 递归解构 v
func (c *Converter) Convert(v any) event.Value {
	return c.CreatePropertyValue(v, true)
}

// CreatePropertyValue 实现 event.PropertyValueFactory
func (c *Converter) CreatePropertyValue(value any, destructure bool) event.Value {
	return depthLimiter{c: c}.CreatePropertyValue(value, destructure)
}

// Render 解构 v 并转换为 slog.Value
func (c *Converter) Render(v any) slog.Value {
	return event.Render(c.Convert(v), c.typeTagKey)
}

// depthLimiter 是传给解构策略的工厂，每深入一层计数加一
type depthLimiter struct {
	c     *Converter
	depth int
}

func (d depthLimiter) CreatePropertyValue(value any, destructure bool) event.Value {
	if d.depth > d.c.maxDepth {
		selflog.Warn("maximum destructuring depth reached", "max_depth", d.c.maxDepth, "type", fmt.Sprintf("%T", value))
		return event.Scalar{}
	}
	return d.c.create(value, destructure, depthLimiter{c: d.c, depth: d.depth + 1})
}

func (c *Converter) create(value any, destructure bool, next depthLimiter) event.Value {
	if value == nil {
		return event.Scalar{}
	}
	if v, ok := value.(event.Value); ok {
		return v
	}
	if s, ok := asScalar(value); ok {
		return s
	}
	if lv, ok := value.(slog.LogValuer); ok {
		return fromSlogValue(slog.AnyValue(lv).Resolve(), destructure, next)
	}

	if !destructure {
		return event.Scalar{V: stringify(value)}
	}

	switch indirectKind(value) {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return event.Scalar{V: reflect.TypeOf(value).String()}
	}

	for _, p := range c.policies {
		if v, ok := p.TryDestructure(value, next); ok {
			return v
		}
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return event.Scalar{}
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		elems := make([]event.Value, rv.Len())
		for i := range elems {
			elems[i] = next.CreatePropertyValue(rv.Index(i).Interface(), destructure)
		}
		return &event.Sequence{Elements: elems}
	case reflect.Map:
		return convertMap(rv, destructure, next)
	}

	if v, ok := c.fallback.TryDestructure(value, next); ok {
		return v
	}
	return event.Scalar{V: stringify(value)}
}

func convertMap(rv reflect.Value, destructure bool, next depthLimiter) event.Value {
	keys := rv.MapKeys()
	if !isScalarKey(rv.Type().Key()) {
		return convertPairs(rv, keys, destructure, next)
	}

	// 映射遍历顺序不确定，按键的字符串形式排序以保证输出稳定
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		ka, kb := fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface())
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})

	entries := make([]event.DictionaryEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, event.DictionaryEntry{
			Key:   event.Scalar{V: k.Interface()},
			Value: next.CreatePropertyValue(rv.MapIndex(k).Interface(), destructure),
		})
	}
	return &event.Dictionary{Entries: entries}
}

// 非标量键的映射输出为 {Key, Value} 结构的序列，键本身也经过解构，
// 因此键中命中脱敏列表的属性同样被替换
func convertPairs(rv reflect.Value, keys []reflect.Value, destructure bool, next depthLimiter) event.Value {
	elems := make([]event.Value, 0, len(keys))
	for _, k := range keys {
		elems = append(elems, &event.Structure{Properties: []event.Property{
			{Name: "Key", Value: next.CreatePropertyValue(k.Interface(), destructure)},
			{Name: "Value", Value: next.CreatePropertyValue(rv.MapIndex(k).Interface(), destructure)},
		}})
	}
	// 键的字符串形式可能包含原值，这里按解构后的结果排序
	slices.SortFunc(elems, func(a, b event.Value) int {
		ka := fmt.Sprint(a.(*event.Structure).Properties[0].Value.Plain())
		kb := fmt.Sprint(b.(*event.Structure).Properties[0].Value.Plain())
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
	return &event.Sequence{Elements: elems}
}

func isScalarKey(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	}
	return false
}

func indirectKind(value any) reflect.Kind {
	t := reflect.TypeOf(value)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind()
}

// asScalar 识别内置标量：布尔、数值、字符串、[]byte、time.Time、error，以及指向它们的指针
func asScalar(value any) (event.Value, bool) {
	if err, ok := value.(error); ok {
		return event.Scalar{V: errorMessage(err)}, true
	}
	// 实现了 LogValuer 的类型由自己决定输出
	if _, ok := value.(slog.LogValuer); !ok {
		if text, ok := marshalText(value); ok {
			return event.Scalar{V: text}, true
		}
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return event.Scalar{}, true
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return event.Scalar{V: rv.Interface()}, true
	}
	if rv.Type() == timeType || rv.Type() == bytesType {
		return event.Scalar{V: rv.Interface()}, true
	}
	// json.RawMessage 等命名字节切片
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return event.Scalar{V: rv.Interface()}, true
	}
	return nil, false
}

// marshalText 对实现 encoding.TextMarshaler 的值（net.IP、uuid 等）取文本形式，
// time.Time 保持原值交给下游格式化
func marshalText(value any) (text string, ok bool) {
	switch value.(type) {
	case time.Time, *time.Time:
		return "", false
	}
	tm, isText := value.(encoding.TextMarshaler)
	if !isText {
		return "", false
	}
	defer func() {
		if r := recover(); r != nil {
			text, ok = "", false
		}
	}()
	b, err := tm.MarshalText()
	if err != nil {
		return "", false
	}
	return string(b), true
}

func fromSlogValue(v slog.Value, destructure bool, next depthLimiter) event.Value {
	switch v.Kind() {
	case slog.KindGroup:
		attrs := v.Group()
		props := make([]event.Property, 0, len(attrs))
		for _, a := range attrs {
			props = append(props, event.Property{
				Name:  a.Key,
				Value: fromSlogValue(a.Value.Resolve(), destructure, next),
			})
		}
		return &event.Structure{Properties: props}
	case slog.KindAny:
		return next.CreatePropertyValue(v.Any(), destructure)
	default:
		return event.Scalar{V: v.Any()}
	}
}

func errorMessage(err error) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprintf("%T", err)
		}
	}()
	return err.Error()
}

// stringify 不解构时的字符串表示。只使用 fmt.Stringer，否则输出类型名，避免 %v 打印出全部字段。
func stringify(value any) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("%T", value)
		}
	}()
	if st, ok := value.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprintf("%T", value)
}
