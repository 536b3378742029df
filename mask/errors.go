package mask

import (
	"errors"
	"fmt"
)

var (
	// ErrNilOptions 构造策略时未提供选项
	ErrNilOptions = errors.New("masking options must not be nil")
	// ErrIndexedProperty 索引属性需要参数，无法直接读取
	ErrIndexedProperty = errors.New("indexed property requires parameters")
	// ErrNotReadable 属性没有可用的读取器
	ErrNotReadable = errors.New("property is not readable")
)

// ErrorType 错误类型枚举
type ErrorType int

const (
	ErrorTypeConfiguration ErrorType = iota
	ErrorTypePropertyAccess
	ErrorTypeIndexedProperty
)

// String 返回错误类型的字符串表示
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeConfiguration:
		return "Configuration"
	case ErrorTypePropertyAccess:
		return "PropertyAccess"
	case ErrorTypeIndexedProperty:
		return "IndexedProperty"
	default:
		return "Unknown"
	}
}

// Error 结构化错误类型
// 只有配置错误会返回给调用方，其余两类仅在内部恢复并写入自诊断通道。
type Error struct {
	Type      ErrorType
	Component string
	Operation string
	Field     string
	Cause     error
}

// Error 实现error接口
func (e *Error) Error() string {
	var msg string

	switch e.Type {
	case ErrorTypeConfiguration:
		msg = fmt.Sprintf("slogmask/%s: configuration error", e.Component)
		if e.Field != "" {
			msg += fmt.Sprintf(" in field '%s'", e.Field)
		}
	case ErrorTypePropertyAccess:
		msg = fmt.Sprintf("slogmask/%s: property accessor failed", e.Component)
		if e.Field != "" {
			msg += fmt.Sprintf(" for '%s'", e.Field)
		}
	case ErrorTypeIndexedProperty:
		msg = fmt.Sprintf("slogmask/%s: indexed property '%s' skipped", e.Component, e.Field)
	default:
		msg = fmt.Sprintf("slogmask/%s: unknown error", e.Component)
	}

	if e.Operation != "" {
		msg += fmt.Sprintf(" during '%s'", e.Operation)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" - %v", e.Cause)
	}

	return msg
}

// Unwrap 实现errors.Unwrap接口，支持错误链
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewConfigurationError 创建配置错误
func NewConfigurationError(component, field string, cause error) *Error {
	return &Error{
		Type:      ErrorTypeConfiguration,
		Component: component,
		Field:     field,
		Cause:     cause,
	}
}

// NewPropertyAccessError 创建属性读取错误，component 通常是声明属性的类型名
func NewPropertyAccessError(component, field string, cause error) *Error {
	return &Error{
		Type:      ErrorTypePropertyAccess,
		Component: component,
		Operation: "read",
		Field:     field,
		Cause:     cause,
	}
}

func newIndexedPropertyError(component, field string) *Error {
	return &Error{
		Type:      ErrorTypeIndexedProperty,
		Component: component,
		Field:     field,
		Cause:     ErrIndexedProperty,
	}
}

// IsErrorType 检查错误链中是否存在指定类型的 *Error
func IsErrorType(err error, errorType ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errorType
	}
	return false
}

// PanicError 包装属性读取器中发生的 panic
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("accessor panic: %v", e.Value)
}

// errorKind 返回错误的类型名称，用于生成占位文本
func errorKind(err error) string {
	var pe *PanicError
	if errors.As(err, &pe) {
		return fmt.Sprintf("panic(%T)", pe.Value)
	}
	return fmt.Sprintf("%T", err)
}
