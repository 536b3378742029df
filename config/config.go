// Package config 从配置文件和环境变量加载脱敏配置。
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"github.com/darkit/slogmask"
	"github.com/darkit/slogmask/mask"
)

// EnvPrefix 环境变量前缀，例如 SLOGMASK_MASKING_MASK
const EnvPrefix = "SLOGMASK"

var errNegativeDepth = errors.New("masking.max_depth must not be negative")

// Config 配置文件根结构
type Config struct {
	Masking Masking `mapstructure:"masking"`
}

// Masking 脱敏配置块
type Masking struct {
	Mask                    string   `mapstructure:"mask"`
	PropertyNames           []string `mapstructure:"property_names"`
	IgnoredNamespaces       []string `mapstructure:"ignored_namespaces"`
	ExcludeStaticProperties bool     `mapstructure:"exclude_static_properties"`
	// MaxDepth 为 0 时使用 slogmask.DefaultMaxDepth
	MaxDepth   int    `mapstructure:"max_depth"`
	TypeTagKey string `mapstructure:"type_tag_key"`
}

// Load 从 yaml 文件加载配置，环境变量可覆盖文件中的值
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, mask.NewConfigurationError("config", path, err)
	}
	return FromViper(v)
}

// FromViper 从已有的 viper 实例解码配置
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, mask.NewConfigurationError("config", "masking", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// 环境变量只能覆盖 viper 已知的键，所以每个键都需要默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("masking.mask", mask.DefaultMask)
	v.SetDefault("masking.property_names", []string{})
	v.SetDefault("masking.ignored_namespaces", []string{})
	v.SetDefault("masking.exclude_static_properties", false)
	v.SetDefault("masking.max_depth", 0)
	v.SetDefault("masking.type_tag_key", "")
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	if c.Masking.MaxDepth < 0 {
		return mask.NewConfigurationError("config", "masking.max_depth", errNegativeDepth)
	}
	return nil
}

// Options 转换为 mask.Options
func (m Masking) Options() *mask.Options {
	opts := mask.DefaultOptions()
	if m.Mask != "" {
		opts.Mask = m.Mask
	}
	opts.AddPropertyNames(m.PropertyNames...)
	opts.AddIgnoredNamespaces(m.IgnoredNamespaces...)
	opts.ExcludeStaticProperties = m.ExcludeStaticProperties
	return opts
}

// Builder 返回按该配置块设置好的构建器
func (m Masking) Builder() *slogmask.Builder {
	b := slogmask.NewBuilder().WithOptions(m.Options()).TypeTagKey(m.TypeTagKey)
	if m.MaxDepth > 0 {
		b.MaxDepth(m.MaxDepth)
	}
	return b
}
