// Package types 缓存实现共用的错误定义，避免 cache 与各实现之间循环引用
package types

import "errors"

// ErrCacheMiss 缓存未命中错误
var ErrCacheMiss = errors.New("cache miss")
