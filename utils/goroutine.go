package utils

import (
	"log"
	"runtime/debug"
)

// SafeGo 启动 goroutine，panic 时记录堆栈而不是让进程退出
func SafeGo(name string, fn func()) {
	go func() {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[SafeGo] %s panic recovered: %v\n%s", name, err, debug.Stack())
			}
		}()
		fn()
	}()
}
