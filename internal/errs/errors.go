// Package errs 应用错误分类：校验、认证、授权、未找到
// 其余错误一律视为服务器内部错误
package errs

import (
	"errors"
	"fmt"
)

// ValidationError 表单校验失败（重名、外键不存在、字段过长）
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AuthError 认证失败
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// ForbiddenError 授权策略拒绝
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// NotFoundError 实体不存在
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// Validation 构造 ValidationError
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Forbidden 构造 ForbiddenError
func Forbidden(message string) error {
	return &ForbiddenError{Message: message}
}

// NotFound 构造 NotFoundError
func NotFound(resource string, id uint) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound 是否为 NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsForbidden 是否为 ForbiddenError
func IsForbidden(err error) bool {
	var fe *ForbiddenError
	return errors.As(err, &fe)
}

// IsValidation 是否为 ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserMessage 返回可以直接展示给用户的文本，内部错误返回空串
func UserMessage(err error) string {
	var (
		ve *ValidationError
		ae *AuthError
		fe *ForbiddenError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &ae):
		return ae.Message
	case errors.As(err, &fe):
		return fe.Message
	default:
		return ""
	}
}
