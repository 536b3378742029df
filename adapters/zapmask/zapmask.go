// Package zapmask 把脱敏后的结构化值输出到 zap。
package zapmask

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/darkit/slogmask"
	"github.com/darkit/slogmask/event"
)

// Object 返回一个 zap 字段，值为 v 经 conv 解构、脱敏后的结果
func Object(key string, v any, conv *slogmask.Converter) zap.Field {
	val := conv.Convert(v)
	switch x := val.(type) {
	case *event.Structure:
		return zap.Object(key, structure{s: x, tagKey: conv.TypeTagKey()})
	case *event.Dictionary:
		return zap.Object(key, dictionary{d: x, tagKey: conv.TypeTagKey()})
	case *event.Sequence:
		return zap.Array(key, sequence{s: x, tagKey: conv.TypeTagKey()})
	default:
		return zap.Any(key, val.Plain())
	}
}

type structure struct {
	s      *event.Structure
	tagKey string
}

func (m structure) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if m.tagKey != "" && m.s.TypeTag != "" {
		enc.AddString(m.tagKey, m.s.TypeTag)
	}
	for _, p := range m.s.Properties {
		if err := addValue(enc, p.Name, p.Value, m.tagKey); err != nil {
			return err
		}
	}
	return nil
}

type dictionary struct {
	d      *event.Dictionary
	tagKey string
}

func (m dictionary) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, e := range m.d.Entries {
		key, ok := e.Key.V.(string)
		if !ok {
			key = fmt.Sprint(e.Key.V)
		}
		if err := addValue(enc, key, e.Value, m.tagKey); err != nil {
			return err
		}
	}
	return nil
}

type sequence struct {
	s      *event.Sequence
	tagKey string
}

func (m sequence) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, e := range m.s.Elements {
		var err error
		switch x := e.(type) {
		case *event.Structure:
			err = enc.AppendObject(structure{s: x, tagKey: m.tagKey})
		case *event.Dictionary:
			err = enc.AppendObject(dictionary{d: x, tagKey: m.tagKey})
		case *event.Sequence:
			err = enc.AppendArray(sequence{s: x, tagKey: m.tagKey})
		default:
			err = enc.AppendReflected(e.Plain())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func addValue(enc zapcore.ObjectEncoder, key string, v event.Value, tagKey string) error {
	switch x := v.(type) {
	case *event.Structure:
		return enc.AddObject(key, structure{s: x, tagKey: tagKey})
	case *event.Dictionary:
		return enc.AddObject(key, dictionary{d: x, tagKey: tagKey})
	case *event.Sequence:
		return enc.AddArray(key, sequence{s: x, tagKey: tagKey})
	case event.Scalar:
		zap.Any(key, x.V).AddTo(enc)
		return nil
	default:
		return enc.AddReflected(key, v.Plain())
	}
}
