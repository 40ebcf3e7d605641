package utils

import (
	"context"
	"errors"
	"strings"
)

// IsContextCanceled 检查错误是否是由于上下文取消导致的
func IsContextCanceled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	// 驱动有时只返回字符串形式的错误
	return strings.Contains(err.Error(), "context canceled")
}

// IsClientDisconnect 客户端断开（请求上下文被取消）
func IsClientDisconnect(err error) bool {
	return IsContextCanceled(err)
}
