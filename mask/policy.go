package mask

import (
	"errors"
	"reflect"

	"github.com/darkit/slogmask/event"
	"github.com/darkit/slogmask/selflog"
)

// accessorFailurePrefix 属性读取失败时占位文本的前缀，后接错误类型
const accessorFailurePrefix = "property accessor failed: "

// Policy 按属性名脱敏的解构策略，实现 event.DestructuringPolicy。
// 构造后配置不可变，可在多个 goroutine 中并发使用。
type Policy struct {
	settings   *settings
	classifier *Classifier
}

// PolicyOption 策略构造选项
type PolicyOption func(*Policy)

// WithClassifier 指定分类器，默认使用 SharedClassifier
func WithClassifier(c *Classifier) PolicyOption {
	return func(p *Policy) {
		if c != nil {
			p.classifier = c
		}
	}
}

// NewPolicy 根据选项创建策略。opts 为 nil 时返回配置错误。
// 选项在构造时被复制，之后对 opts 的修改不影响策略。
func NewPolicy(opts *Options, options ...PolicyOption) (*Policy, error) {
	if opts == nil {
		return nil, NewConfigurationError("mask", "options", ErrNilOptions)
	}

	p := &Policy{
		settings:   newSettings(opts),
		classifier: shared,
	}
	for _, o := range options {
		o(p)
	}
	return p, nil
}

// NewPolicyFor 使用默认替换文本，对给定属性名脱敏
func NewPolicyFor(names ...string) *Policy {
	p, _ := NewPolicy(DefaultOptions().AddPropertyNames(names...))
	return p
}

// Mask 返回替换文本
func (p *Policy) Mask() string {
	return p.settings.mask
}

// Classify 返回类型 t（指针会被解引用）的属性划分
func (p *Policy) Classify(t reflect.Type) *Classification {
	return p.classifier.classify(indirectType(t), p.settings)
}

// TryDestructure 实现 event.DestructuringPolicy。
// nil 和集合类型（切片、数组、映射、通道）不处理，交由宿主逐个元素解构；
// 其余值总是被处理：先输出 Include 中的属性，再输出 Mask 中的属性。
func (p *Policy) TryDestructure(value any, factory event.PropertyValueFactory) (event.Value, bool) {
	if value == nil {
		return nil, false
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return nil, false
	}

	t := rv.Type()
	cls := p.classifier.classify(t, p.settings)

	props := make([]event.Property, 0, len(cls.Include)+len(cls.Mask))
	for _, prop := range cls.Include {
		props = append(props, event.Property{
			Name:  prop.Name,
			Value: includedValue(rv, prop, factory),
		})
	}
	for _, prop := range cls.Mask {
		// 被脱敏的属性从不读取，避免读取器的副作用或错误信息泄露原值
		props = append(props, event.Property{
			Name:  prop.Name,
			Value: event.Scalar{V: p.settings.mask},
		})
	}

	return &event.Structure{TypeTag: t.Name(), Properties: props}, true
}

func includedValue(rv reflect.Value, prop Property, factory event.PropertyValueFactory) event.Value {
	v, err := prop.Read(rv)
	if err != nil {
		component := rv.Type().String()
		if errors.Is(err, ErrIndexedProperty) {
			selflog.Warn("indexed property skipped", "error", newIndexedPropertyError(component, prop.Name))
			return event.Scalar{}
		}
		selflog.Warn("property accessor failed", "error", NewPropertyAccessError(component, prop.Name, err))
		return event.Scalar{V: accessorFailurePrefix + errorKind(err)}
	}

	if v == nil {
		return event.Scalar{}
	}
	return factory.CreatePropertyValue(v, true)
}
