package selflog

import (
	"bytes"
	"strings"
	"testing"
)

func TestSelfLogDisabledByDefault(t *testing.T) {
	Disable()
	if Enabled() {
		t.Fatal("selflog should be disabled")
	}
	// 关闭时调用不应产生任何副作用
	Warn("ignored", "key", "value")
}

func TestSelfLogWritesWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	Enable(&buf)
	defer Disable()

	Warn("indexed property skipped", "property", "Item")

	out := buf.String()
	if !strings.Contains(out, "indexed property skipped") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "property=Item") {
		t.Errorf("output missing attr: %q", out)
	}
	if !strings.Contains(out, "component=slogmask") {
		t.Errorf("output missing component: %q", out)
	}
}

func TestSelfLogEnableNilDisables(t *testing.T) {
	var buf bytes.Buffer
	Enable(&buf)
	Enable(nil)
	if Enabled() {
		t.Fatal("Enable(nil) should disable selflog")
	}
	Warn("dropped")
	if buf.Len() != 0 {
		t.Errorf("nothing should be written, got %q", buf.String())
	}
}
