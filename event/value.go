// Package event 定义日志管线中结构化值的表示，以及宿主与解构策略之间的协作接口。
package event

import (
	"fmt"
	"log/slog"
)

// Value 是一次日志调用中被捕获值的结构化表示。
type Value interface {
	slog.LogValuer
	// Plain 返回值的 Go 原生表示：标量原样返回，结构体为 map[string]any，序列为 []any。
	Plain() any
	isValue()
}

// PropertyValueFactory 由宿主管线实现，负责把任意值转换成 Value。
// destructure 为 true 时，非标量值会被递归解构，而不是转换成字符串。
type PropertyValueFactory interface {
	CreatePropertyValue(value any, destructure bool) Value
}

// DestructuringPolicy 是可插入宿主管线的解构策略。
// 返回 false 表示不处理该值，由宿主继续尝试其他策略或内置逻辑。
type DestructuringPolicy interface {
	TryDestructure(value any, factory PropertyValueFactory) (Value, bool)
}

// Scalar 标量值
type Scalar struct {
	V any
}

func (Scalar) isValue() {}

// LogValue implements slog.LogValuer.
func (s Scalar) LogValue() slog.Value {
	return slog.AnyValue(s.V)
}

// Plain 返回标量本身。
func (s Scalar) Plain() any {
	return s.V
}

// Property 结构体中的命名字段
type Property struct {
	Name  string
	Value Value
}

// Structure 命名字段的有序集合，TypeTag 是来源类型的简单名称，仅用于展示。
type Structure struct {
	TypeTag    string
	Properties []Property
}

func (*Structure) isValue() {}

// LogValue implements slog.LogValuer. 字段顺序与 Properties 一致。
func (s *Structure) LogValue() slog.Value {
	return Render(s, "")
}

// Plain 返回字段名到原生值的映射。
func (s *Structure) Plain() any {
	return ToPlain(s, "")
}

// Get 按名称查找字段（区分大小写）。
func (s *Structure) Get(name string) (Value, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Names 按输出顺序返回全部字段名。
func (s *Structure) Names() []string {
	names := make([]string, len(s.Properties))
	for i, p := range s.Properties {
		names[i] = p.Name
	}
	return names
}

// Sequence 有序元素列表
type Sequence struct {
	Elements []Value
}

func (*Sequence) isValue() {}

// LogValue implements slog.LogValuer. slog 没有序列类型，这里输出原生切片。
func (s *Sequence) LogValue() slog.Value {
	return Render(s, "")
}

// Plain 返回元素的原生值切片。
func (s *Sequence) Plain() any {
	return ToPlain(s, "")
}

// DictionaryEntry 字典中的一项
type DictionaryEntry struct {
	Key   Scalar
	Value Value
}

// Dictionary 键值对集合，键总是标量。
type Dictionary struct {
	Entries []DictionaryEntry
}

func (*Dictionary) isValue() {}

// LogValue implements slog.LogValuer.
func (d *Dictionary) LogValue() slog.Value {
	return Render(d, "")
}

// Plain 返回以键的字符串形式为键的映射。
func (d *Dictionary) Plain() any {
	return ToPlain(d, "")
}

// Literal 返回标量值的字面量，非标量返回 false。
func Literal(v Value) (any, bool) {
	s, ok := v.(Scalar)
	if !ok {
		return nil, false
	}
	return s.V, true
}

// Render 把 Value 转换为 slog.Value。typeTagKey 非空时，结构体会在首位附加
// 一个以 typeTagKey 为键、TypeTag 为值的属性（TypeTag 为空时不附加）。
func Render(v Value, typeTagKey string) slog.Value {
	switch x := v.(type) {
	case nil:
		return slog.AnyValue(nil)
	case Scalar:
		return slog.AnyValue(x.V)
	case *Structure:
		attrs := make([]slog.Attr, 0, len(x.Properties)+1)
		if typeTagKey != "" && x.TypeTag != "" {
			attrs = append(attrs, slog.String(typeTagKey, x.TypeTag))
		}
		for _, p := range x.Properties {
			attrs = append(attrs, slog.Attr{Key: p.Name, Value: Render(p.Value, typeTagKey)})
		}
		return groupValue(attrs)
	case *Dictionary:
		attrs := make([]slog.Attr, 0, len(x.Entries))
		for _, e := range x.Entries {
			attrs = append(attrs, slog.Attr{Key: keyString(e.Key), Value: Render(e.Value, typeTagKey)})
		}
		return groupValue(attrs)
	case *Sequence:
		return slog.AnyValue(ToPlain(x, typeTagKey))
	default:
		return v.LogValue()
	}
}

// ToPlain 把 Value 转换为 Go 原生值，typeTagKey 的含义同 Render。
func ToPlain(v Value, typeTagKey string) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Scalar:
		return x.V
	case *Structure:
		m := make(map[string]any, len(x.Properties)+1)
		if typeTagKey != "" && x.TypeTag != "" {
			m[typeTagKey] = x.TypeTag
		}
		for _, p := range x.Properties {
			m[p.Name] = ToPlain(p.Value, typeTagKey)
		}
		return m
	case *Sequence:
		out := make([]any, len(x.Elements))
		for i, e := range x.Elements {
			out[i] = ToPlain(e, typeTagKey)
		}
		return out
	case *Dictionary:
		m := make(map[string]any, len(x.Entries))
		for _, e := range x.Entries {
			m[keyString(e.Key)] = ToPlain(e.Value, typeTagKey)
		}
		return m
	default:
		return v.Plain()
	}
}

// slog 的内置处理器会丢弃空分组，空结构输出为空映射
func groupValue(attrs []slog.Attr) slog.Value {
	if len(attrs) == 0 {
		return slog.AnyValue(map[string]any{})
	}
	return slog.GroupValue(attrs...)
}

func keyString(k Scalar) string {
	if s, ok := k.V.(string); ok {
		return s
	}
	return fmt.Sprint(k.V)
}
