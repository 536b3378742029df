package mask

import (
	"reflect"
	"sync"

	"github.com/darkit/slogmask/internal/typekey"
)

// Classification 某个类型的属性划分：Include 原样输出，Mask 输出替换文本。
// 缓存中的分类在多个 goroutine 间只读共享，调用方不得修改其中的切片。
type Classification struct {
	Include []Property
	Mask    []Property
}

// Classifier 对类型的可读属性分类并缓存结果。
// 缓存按 (类型, 选项指纹) 索引，不做淘汰：进程内被解构的类型数量有限且稳定。
type Classifier struct {
	mu       sync.Mutex
	cache    map[typekey.Key]*Classification
	registry *Registry
}

// NewClassifier 创建分类器，registry 为 nil 时使用 DefaultRegistry
func NewClassifier(registry *Registry) *Classifier {
	if registry == nil {
		registry = DefaultRegistry
	}
	return &Classifier{
		cache:    make(map[typekey.Key]*Classification),
		registry: registry,
	}
}

var shared = NewClassifier(DefaultRegistry)

// SharedClassifier 返回进程级共享分类器，未指定分类器的策略都使用它
func SharedClassifier() *Classifier {
	return shared
}

// Len 返回已缓存的分类数量
func (c *Classifier) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

func (c *Classifier) classify(t reflect.Type, s *settings) *Classification {
	// 忽略的包不走缓存，每次按当前属性列表重新计算
	if s.ignores(t.PkgPath()) {
		return c.partition(t, s, true)
	}

	key := typekey.New(t, s.fingerprint)

	c.mu.Lock()
	entry, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return entry
	}

	// 并发未命中时可能重复计算，分类是确定性的，后写入者覆盖即可
	entry = c.partition(t, s, false)

	c.mu.Lock()
	c.cache[key] = entry
	c.mu.Unlock()

	return entry
}

func (c *Classifier) partition(t reflect.Type, s *settings, bypass bool) *Classification {
	entry := &Classification{}
	for _, p := range c.registry.Properties(t) {
		if !p.Readable {
			continue
		}
		if bypass {
			entry.Include = append(entry.Include, p)
			continue
		}
		if p.Static && s.excludeStatic {
			continue
		}
		if s.shouldMask(p.Name) {
			entry.Mask = append(entry.Mask, p)
		} else {
			entry.Include = append(entry.Include, p)
		}
	}
	return entry
}
