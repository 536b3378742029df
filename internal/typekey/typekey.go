package typekey

import (
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Key 分类缓存的键：类型加上生成该分类的选项指纹。
// 同一进程内不同选项的策略共享一份缓存时，依靠指纹区分各自的分类结果。
type Key struct {
	Type        reflect.Type
	Fingerprint uint64
}

// New 创建缓存键
func New(t reflect.Type, fingerprint uint64) Key {
	return Key{Type: t, Fingerprint: fingerprint}
}

// String 返回便于诊断输出的键表示
func (k Key) String() string {
	name := "<nil>"
	if k.Type != nil {
		name = k.Type.String()
		if pkg := k.Type.PkgPath(); pkg != "" {
			name = pkg + "." + k.Type.Name()
		}
	}
	return name + "#" + strconv.FormatUint(k.Fingerprint, 16)
}

// Fingerprint 对名称集合计算与顺序、大小写、重复无关的 xxhash 指纹，flags 按顺序参与计算。
func Fingerprint(names []string, flags ...bool) uint64 {
	normalized := Normalize(names)

	d := xxhash.New()
	for _, n := range normalized {
		_, _ = d.WriteString(n)
		_, _ = d.Write([]byte{0})
	}
	for _, f := range flags {
		if f {
			_, _ = d.Write([]byte{1})
		} else {
			_, _ = d.Write([]byte{2})
		}
	}
	return d.Sum64()
}

// Normalize 返回小写、去重、排序后的名称，空名称被丢弃。
func Normalize(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
