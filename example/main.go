package main

import (
	"log/slog"
	"os"
	"reflect"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/darkit/slogmask"
	"github.com/darkit/slogmask/adapters/logrusmask"
	"github.com/darkit/slogmask/adapters/zapmask"
	"github.com/darkit/slogmask/config"
	"github.com/darkit/slogmask/example/core"
	"github.com/darkit/slogmask/mask"
	"github.com/darkit/slogmask/selflog"
)

type Account struct {
	Id       int
	Name     string
	Password string
	Card     Card
	Tags     []string
}

type Card struct {
	Number string
	Holder string
}

func main() {
	// 1. 打开内部诊断输出
	selflog.Enable(os.Stderr)
	defer selflog.Disable()

	// 2. 从环境变量加载配置，例如 SLOGMASK_MASKING_MASK=xxx
	cfg, err := config.FromViper(viper.New())
	if err != nil {
		slog.Error("load config failed", "error", err)
		return
	}

	// 3. 注册计算属性
	mask.Register[Account](mask.Getter("Initial", func(a Account) (any, error) {
		if a.Name == "" {
			return "", nil
		}
		return a.Name[:1], nil
	}))

	cfg.Masking.PropertyNames = append(cfg.Masking.PropertyNames, "password", "number")
	b := cfg.Masking.Builder()
	if err := core.Init(b); err != nil {
		slog.Error("build handler failed", "error", err)
		return
	}

	acc := Account{
		Id:       1,
		Name:     "alice",
		Password: "p@ss",
		Card:     Card{Number: "4111111111111111", Holder: "alice"},
		Tags:     []string{"vip"},
	}

	demoSlog(acc)
	demoReplaceAttr(b, acc)
	demoZap(b, acc)
	demoLogrus(b, acc)
	demoClassification()
}

// demoSlog 演示 slog 中间件
func demoSlog(acc Account) {
	core.Logger.Info("account created", "account", acc)
	core.Logger.Info("accounts loaded", "accounts", []*Account{&acc})
	core.Logger.WithGroup("req").Info("grouped", "account", acc)
}

// demoReplaceAttr 演示直接作为 ReplaceAttr 使用
func demoReplaceAttr(b *slogmask.Builder, acc Account) {
	conv, err := b.Build()
	if err != nil {
		return
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{ReplaceAttr: conv.ReplaceAttr}))
	logger.Info("json output", "account", acc)
}

// demoZap 演示 zap 字段
func demoZap(b *slogmask.Builder, acc Account) {
	conv, err := b.Build()
	if err != nil {
		return
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("zap output", zapmask.Object("account", acc, conv))
}

// demoLogrus 演示 logrus 钩子
func demoLogrus(b *slogmask.Builder, acc Account) {
	conv, err := b.Build()
	if err != nil {
		return
	}
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.AddHook(logrusmask.NewHook(conv))
	logger.WithField("account", acc).Info("logrus output")
}

// demoClassification 查看某个类型的属性分类结果
func demoClassification() {
	p := mask.NewPolicyFor("password")
	c := p.Classify(reflect.TypeFor[Account]())
	for _, prop := range c.Include {
		slog.Info("include", "property", prop.Name)
	}
	for _, prop := range c.Mask {
		slog.Info("mask", "property", prop.Name)
	}
}
