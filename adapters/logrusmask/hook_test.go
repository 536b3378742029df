package logrusmask

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/darkit/slogmask"
)

type session struct {
	Id    int
	Token string
}

func mustConverter(t *testing.T, b *slogmask.Builder) *slogmask.Converter {
	t.Helper()
	c, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestHookMasksEntryData(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(NewHook(mustConverter(t, slogmask.NewBuilder().ByMaskingProperties("token"))))
	recorder := test.NewLocal(logger)

	err := errors.New("boom")
	logger.WithFields(logrus.Fields{
		"session":  &session{Id: 1, Token: "abc"},
		"sessions": []session{{Id: 2, Token: "def"}},
		"user":     "alice",
		"error":    err,
	}).Info("login")

	entry := recorder.LastEntry()
	if entry == nil {
		t.Fatal("no entry recorded")
	}
	if got, want := entry.Data["session"], map[string]any{"Id": 1, "Token": "******"}; !reflect.DeepEqual(got, want) {
		t.Errorf("session = %#v, want %#v", got, want)
	}
	if got, want := entry.Data["sessions"], []any{map[string]any{"Id": 2, "Token": "******"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("sessions = %#v, want %#v", got, want)
	}
	if entry.Data["user"] != "alice" {
		t.Errorf("user = %v", entry.Data["user"])
	}
	if entry.Data["error"] != err {
		t.Errorf("error field should be left untouched")
	}
}

func TestHookWithJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.AddHook(NewHook(mustConverter(t, slogmask.NewBuilder().ByMaskingProperties("token").TypeTagKey("_type"))))

	logger.WithField("session", session{Id: 3, Token: "xyz"}).Warn("refresh")

	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	want := map[string]any{"_type": "session", "Id": float64(3), "Token": "******"}
	if !reflect.DeepEqual(out["session"], want) {
		t.Errorf("session = %#v, want %#v", out["session"], want)
	}
}

func TestHookLevels(t *testing.T) {
	h := NewHook(nil, logrus.ErrorLevel)
	if !reflect.DeepEqual(h.Levels(), []logrus.Level{logrus.ErrorLevel}) {
		t.Errorf("Levels() = %v", h.Levels())
	}
	if len(NewHook(nil).Levels()) != len(logrus.AllLevels) {
		t.Error("default hook should fire on all levels")
	}
}

func TestHookMasksStructMapKeys(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.AddHook(NewHook(mustConverter(t, slogmask.NewBuilder().ByMaskingProperties("token"))))
	recorder := test.NewLocal(logger)

	logger.WithField("by_session", map[session]int{{Id: 1, Token: "abc"}: 5}).Info("counts")

	want := []any{map[string]any{"Key": map[string]any{"Id": 1, "Token": "******"}, "Value": 5}}
	if got := recorder.LastEntry().Data["by_session"]; !reflect.DeepEqual(got, want) {
		t.Errorf("by_session = %#v, want %#v", got, want)
	}
}
