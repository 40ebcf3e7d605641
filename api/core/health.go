package core

import (
	"context"
	"time"

	"github.com/anoixa/bandpress/cache"
	"github.com/anoixa/bandpress/database"
)

func checkDatabaseHealth(provider database.Provider) string {
	if provider == nil {
		return "not initialized"
	}
	if err := provider.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

// checkCacheHealth 目录应用不使用缓存
func checkCacheHealth(provider cache.Provider) string {
	if provider == nil {
		return "disabled"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := provider.Health(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
