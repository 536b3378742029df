package slogmask

import (
	"errors"
	"log/slog"

	"github.com/darkit/slogmask/event"
	"github.com/darkit/slogmask/mask"
)

var (
	// ErrNilConfigure ByMaskingOptions 未提供配置函数
	ErrNilConfigure = errors.New("options configure func must not be nil")
	// ErrNilPolicy With 传入了 nil 策略
	ErrNilPolicy = errors.New("destructuring policy must not be nil")
	// ErrNilHandler BuildHandler 未提供下游处理器
	ErrNilHandler = errors.New("next handler must not be nil")
	// ErrInvalidMaxDepth 最大深度必须为正数
	ErrInvalidMaxDepth = errors.New("max depth must be positive")
)

// Builder 通过链式方式配置解构策略，最后构建 Converter 或 slog.Handler。
// 配置错误会被记录下来，由 Build 统一返回。
type Builder struct {
	policies   []event.DestructuringPolicy
	classifier *mask.Classifier
	maxDepth   int
	typeTagKey string
	err        error
}

// NewBuilder 创建构建器，默认最大深度为 DefaultMaxDepth，不输出类型名
func NewBuilder() *Builder {
	return &Builder{maxDepth: DefaultMaxDepth}
}

// WithClassifier 指定之后添加的脱敏策略所用的分类器，默认使用进程级共享分类器
func (b *Builder) WithClassifier(c *mask.Classifier) *Builder {
	b.classifier = c
	return b
}

// ByMaskingProperties 添加一个使用默认替换文本、按给定属性名脱敏的策略
func (b *Builder) ByMaskingProperties(names ...string) *Builder {
	return b.WithOptions(mask.DefaultOptions().AddPropertyNames(names...))
}

// ByMaskingOptions 通过配置函数设置选项并添加脱敏策略
func (b *Builder) ByMaskingOptions(configure func(*mask.Options)) *Builder {
	if configure == nil {
		b.fail(mask.NewConfigurationError("builder", "configure", ErrNilConfigure))
		return b
	}
	opts := mask.DefaultOptions()
	configure(opts)
	return b.WithOptions(opts)
}

// WithOptions 使用完整的选项添加脱敏策略，opts 为 nil 时记录配置错误
func (b *Builder) WithOptions(opts *mask.Options) *Builder {
	p, err := mask.NewPolicy(opts, mask.WithClassifier(b.classifier))
	if err != nil {
		b.fail(err)
		return b
	}
	b.policies = append(b.policies, p)
	return b
}

// With 添加自定义解构策略，按添加顺序依次尝试
func (b *Builder) With(policies ...event.DestructuringPolicy) *Builder {
	for _, p := range policies {
		if p == nil {
			b.fail(mask.NewConfigurationError("builder", "policy", ErrNilPolicy))
			continue
		}
		b.policies = append(b.policies, p)
	}
	return b
}

// MaxDepth 设置最大解构深度
func (b *Builder) MaxDepth(n int) *Builder {
	if n <= 0 {
		b.fail(mask.NewConfigurationError("builder", "max_depth", ErrInvalidMaxDepth))
		return b
	}
	b.maxDepth = n
	return b
}

// TypeTagKey 设置输出结构体类型名时使用的键，为空表示不输出
func (b *Builder) TypeTagKey(key string) *Builder {
	b.typeTagKey = key
	return b
}

// Build 构建 Converter
func (b *Builder) Build() (*Converter, error) {
	if b.err != nil {
		return nil, b.err
	}
	c := NewConverter(b.policies...)
	c.maxDepth = b.maxDepth
	c.typeTagKey = b.typeTagKey
	return c, nil
}

// BuildHandler 构建包装 next 的脱敏处理器
func (b *Builder) BuildHandler(next slog.Handler) (slog.Handler, error) {
	if next == nil {
		return nil, mask.NewConfigurationError("builder", "handler", ErrNilHandler)
	}
	c, err := b.Build()
	if err != nil {
		return nil, err
	}
	return NewHandler(next, c), nil
}

func (b *Builder) fail(err error) {
	b.err = errors.Join(b.err, err)
}
