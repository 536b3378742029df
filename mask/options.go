package mask

import (
	"strings"

	"github.com/darkit/slogmask/internal/typekey"
)

// DefaultMask 默认的替换文本
const DefaultMask = "******"

// Options 脱敏策略选项
type Options struct {
	// Mask 替换原值的文本，为空时使用 DefaultMask
	Mask string `mapstructure:"mask" json:"mask"`
	// PropertyNames 需要脱敏的属性名，大小写不敏感的精确匹配
	PropertyNames []string `mapstructure:"property_names" json:"property_names"`
	// IgnoredNamespaces 不做脱敏的包路径，大小写不敏感的精确匹配
	IgnoredNamespaces []string `mapstructure:"ignored_namespaces" json:"ignored_namespaces"`
	// ExcludeStaticProperties 为 true 时静态属性完全不出现在输出中
	ExcludeStaticProperties bool `mapstructure:"exclude_static_properties" json:"exclude_static_properties"`
}

// DefaultOptions 返回使用默认替换文本的空选项
func DefaultOptions() *Options {
	return &Options{Mask: DefaultMask}
}

// AddPropertyNames 追加需要脱敏的属性名
func (o *Options) AddPropertyNames(names ...string) *Options {
	o.PropertyNames = append(o.PropertyNames, names...)
	return o
}

// AddIgnoredNamespaces 追加忽略脱敏的包路径
func (o *Options) AddIgnoredNamespaces(namespaces ...string) *Options {
	o.IgnoredNamespaces = append(o.IgnoredNamespaces, namespaces...)
	return o
}

// settings 是策略构造时由 Options 归一化得到的只读配置
type settings struct {
	mask          string
	names         map[string]struct{}
	namespaces    map[string]struct{}
	excludeStatic bool
	fingerprint   uint64
}

func newSettings(o *Options) *settings {
	s := &settings{
		mask:          o.Mask,
		names:         make(map[string]struct{}),
		namespaces:    make(map[string]struct{}),
		excludeStatic: o.ExcludeStaticProperties,
	}
	if s.mask == "" {
		s.mask = DefaultMask
	}

	names := typekey.Normalize(o.PropertyNames)
	for _, n := range names {
		s.names[n] = struct{}{}
	}
	for _, ns := range typekey.Normalize(o.IgnoredNamespaces) {
		s.namespaces[ns] = struct{}{}
	}
	s.fingerprint = typekey.Fingerprint(names, s.excludeStatic)
	return s
}

func (s *settings) shouldMask(name string) bool {
	_, ok := s.names[strings.ToLower(name)]
	return ok
}

func (s *settings) ignores(pkgPath string) bool {
	if pkgPath == "" || len(s.namespaces) == 0 {
		return false
	}
	_, ok := s.namespaces[strings.ToLower(pkgPath)]
	return ok
}
