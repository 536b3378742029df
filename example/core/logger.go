package core

import (
	"log/slog"
	"os"

	"github.com/darkit/slogmask"
)

var Logger *slog.Logger

// Init 使用给定构建器创建全局脱敏日志记录器，构建失败时退回到未脱敏的文本输出
func Init(b *slogmask.Builder) error {
	h, err := b.BuildHandler(slog.NewTextHandler(os.Stdout, nil))
	if err != nil {
		Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
		return err
	}
	Logger = slog.New(h).With("module", "main")
	return nil
}
