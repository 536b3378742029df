package mask

import (
	"fmt"
	"reflect"
	"sync"
)

// Property 描述类型上的一个可输出属性。
//
// 导出的结构体字段（包括嵌入结构体提升的字段）会被自动枚举；
// Go 没有 getter、静态属性或索引器，这几类属性需要通过 Registry 显式登记。
type Property struct {
	Name          string
	DeclaringType reflect.Type
	Readable      bool
	Indexed       bool
	Static        bool

	get func(reflect.Value) (any, error)
}

// Read 从 v（属性所属类型的值，已解引用）读取属性值。
// 索引属性返回 ErrIndexedProperty；读取器中的 panic 会被转换为 *PanicError。
func (p Property) Read(v reflect.Value) (val any, err error) {
	if p.Indexed {
		return nil, ErrIndexedProperty
	}
	if !p.Readable || p.get == nil {
		return nil, ErrNotReadable
	}

	defer func() {
		if r := recover(); r != nil {
			val, err = nil, &PanicError{Value: r}
		}
	}()
	return p.get(v)
}

// Getter 登记一个由函数计算的实例属性，T 可以是结构体类型或其指针类型。
func Getter[T any](name string, fn func(T) (any, error)) Property {
	return Property{
		Name:          name,
		DeclaringType: indirectType(reflect.TypeFor[T]()),
		Readable:      true,
		get: func(v reflect.Value) (any, error) {
			recv, ok := receiver[T](v)
			if !ok {
				return nil, fmt.Errorf("getter %s: %s is not %s", name, v.Type(), reflect.TypeFor[T]())
			}
			return fn(recv)
		},
	}
}

// Static 登记一个类型级（静态）属性，读取时不使用实例。
func Static(name string, fn func() (any, error)) Property {
	return Property{
		Name:     name,
		Readable: true,
		Static:   true,
		get: func(reflect.Value) (any, error) {
			return fn()
		},
	}
}

// Indexed 登记一个需要参数才能读取的索引属性，它的值永远不会被读取。
func Indexed(name string) Property {
	return Property{
		Name:     name,
		Readable: true,
		Indexed:  true,
	}
}

// WriteOnly 登记一个只写属性，它不会出现在输出中。
func WriteOnly(name string) Property {
	return Property{Name: name}
}

func receiver[T any](v reflect.Value) (T, bool) {
	var zero T
	if !v.IsValid() || !v.CanInterface() {
		return zero, false
	}
	if recv, ok := v.Interface().(T); ok {
		return recv, true
	}
	// T 是指针类型而 v 不可寻址时，复制一份再取地址
	var ptr reflect.Value
	if v.CanAddr() {
		ptr = v.Addr()
	} else {
		ptr = reflect.New(v.Type())
		ptr.Elem().Set(v)
	}
	recv, ok := ptr.Interface().(T)
	return recv, ok
}

func fieldReader(index []int) func(reflect.Value) (any, error) {
	return func(v reflect.Value) (any, error) {
		f, err := v.FieldByIndexErr(index)
		if err != nil {
			return nil, err
		}
		if !f.CanInterface() {
			return nil, ErrNotReadable
		}
		return f.Interface(), nil
	}
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// Registry 保存按类型显式登记的属性
type Registry struct {
	mu    sync.RWMutex
	extra map[reflect.Type][]Property
}

// NewRegistry 创建空的属性登记表
func NewRegistry() *Registry {
	return &Registry{extra: make(map[reflect.Type][]Property)}
}

// DefaultRegistry 默认登记表，共享分类器使用它
var DefaultRegistry = NewRegistry()

// Register 在 DefaultRegistry 中为 T 登记属性。
// 类型的分类结果一经缓存不会再更新，应在程序初始化阶段完成登记。
func Register[T any](props ...Property) {
	DefaultRegistry.Add(reflect.TypeFor[T](), props...)
}

// Add 为类型 t 追加登记属性，t 为指针类型时按其元素类型登记。
func (r *Registry) Add(t reflect.Type, props ...Property) {
	t = indirectType(t)
	if t == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range props {
		if p.DeclaringType == nil {
			p.DeclaringType = t
		}
		r.extra[t] = append(r.extra[t], p)
	}
}

// Properties 按枚举顺序返回类型的全部属性（包括不可读属性）：
// 先是导出字段，再是登记的属性。
func (r *Registry) Properties(t reflect.Type) []Property {
	var props []Property

	if t.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(t) {
			if !f.IsExported() {
				continue
			}
			// 嵌入结构体本身不输出，它的字段已被提升
			if f.Anonymous && indirectType(f.Type).Kind() == reflect.Struct {
				continue
			}
			props = append(props, Property{
				Name:          f.Name,
				DeclaringType: declaringType(t, f.Index),
				Readable:      true,
				get:           fieldReader(f.Index),
			})
		}
	}

	r.mu.RLock()
	props = append(props, r.extra[t]...)
	r.mu.RUnlock()

	return props
}

func declaringType(t reflect.Type, index []int) reflect.Type {
	for _, i := range index[:len(index)-1] {
		t = indirectType(t.Field(i).Type)
	}
	return t
}
