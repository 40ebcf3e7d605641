package app

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/bandpress/cache"
	"github.com/anoixa/bandpress/config"
	"github.com/anoixa/bandpress/database"
	"github.com/anoixa/bandpress/internal/auth"
	"github.com/anoixa/bandpress/internal/blog"
	"github.com/anoixa/bandpress/internal/catalog"
	"github.com/anoixa/bandpress/internal/policy"
	"github.com/anoixa/bandpress/internal/session"
)

// Container 依赖注入容器 - 管理所有服务的生命周期
type Container struct {
	config   *config.Config
	db       database.Provider
	cache    cache.Provider
	sessions *session.Manager

	Auth    *auth.Service
	Blog    *blog.Service
	Catalog *catalog.Service
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config: cfg,
	}
}

// Init 打开数据库并初始化服务
func (c *Container) Init(ctx context.Context) error {
	if err := config.ValidateApp(c.config.App); err != nil {
		return err
	}

	provider, err := database.NewGormProvider(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return c.InitWithProvider(ctx, provider)
}

// InitWithProvider 使用已有的数据库提供者初始化（测试时传入内存库）
func (c *Container) InitWithProvider(ctx context.Context, provider database.Provider) error {
	c.db = provider
	log.Printf("[Container] Initializing %s app, database type: %s", c.config.App, provider.Name())

	// 自动DDL
	if err := database.Migrate(provider.DB(), c.config.App); err != nil {
		return fmt.Errorf("failed to auto migrate database: %w", err)
	}

	if c.config.UsingDefaultSecret() {
		log.Println("[Container] WARNING: SECRET_KEY is not set, sessions are signed with an insecure default key")
	}
	c.sessions = session.NewManager(session.Options{
		Secret:     c.config.Secret(),
		CookieName: c.config.SessionCookieName,
		MaxAge:     c.config.SessionMaxAge,
		Secure:     c.config.SessionSecure,
	})

	switch c.config.App {
	case config.AppCatalog:
		c.Catalog = catalog.NewService(provider)
	default:
		if err := c.initBlog(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) initBlog(ctx context.Context) error {
	cacheProvider, err := cache.NewProvider(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.cache = cacheProvider

	pol, err := policy.New(c.config.BlogPolicy)
	if err != nil {
		return err
	}
	log.Printf("[Container] Blog authorization policy: %s", pol.Name())

	c.Auth = auth.NewService(c.db, c.cache, c.config)
	c.Blog = blog.NewService(c.db, pol, c.Auth)

	if c.config.BlogBootstrapAdmin {
		if _, err := c.Auth.EnsureDefaultAdmin(ctx); err != nil {
			return err
		}
	}
	return nil
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetDatabaseProvider 获取数据库提供者
func (c *Container) GetDatabaseProvider() database.Provider {
	return c.db
}

// GetCacheProvider 获取缓存提供者，目录应用没有缓存
func (c *Container) GetCacheProvider() cache.Provider {
	return c.cache
}

// GetSessionManager 获取会话管理器
func (c *Container) GetSessionManager() *session.Manager {
	return c.sessions
}

// Close 关闭所有服务
func (c *Container) Close() error {
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			log.Printf("[Container] Error closing cache: %v", err)
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return fmt.Errorf("error closing database: %w", err)
		}
	}
	return nil
}
