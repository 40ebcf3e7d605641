package cache

import (
	"fmt"
	"log"

	"github.com/anoixa/bandpress/cache/memory"
	"github.com/anoixa/bandpress/cache/redis"
	"github.com/anoixa/bandpress/config"
)

// NewProvider 按配置创建缓存提供者
// Redis 不可用时回退到内存缓存，缓存只是加速用户解析，不影响正确性
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.CacheType {
	case "redis":
		p, err := redis.NewRedisFromConfig(&redis.Config{
			Address:  cfg.CacheRedisAddr,
			Password: cfg.CacheRedisPassword,
			DB:       cfg.CacheRedisDB,
		})
		if err == nil {
			log.Printf("[Cache] Using redis cache at %s", cfg.CacheRedisAddr)
			return p, nil
		}
		log.Printf("[Cache] Redis unavailable, falling back to memory cache: %v", err)
		return newMemory()
	case "memory", "":
		return newMemory()
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}
}

func newMemory() (Provider, error) {
	p, err := memory.NewMemory(memory.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}
	log.Println("[Cache] Using in-memory cache")
	return p, nil
}
