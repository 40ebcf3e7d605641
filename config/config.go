package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 应用名称
const (
	AppBlog    = "blog"
	AppCatalog = "catalog"
)

// DefaultSecretKey 未配置 SECRET_KEY 时使用的不安全默认值
const DefaultSecretKey = "SECRET"

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	// 应用选择
	App string `mapstructure:"app"`

	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`

	// 会话配置
	SecretKey         string        `mapstructure:"secret_key"`
	SessionCookieName string        `mapstructure:"session_cookie_name"`
	SessionMaxAge     time.Duration `mapstructure:"session_max_age"`
	SessionSecure     bool          `mapstructure:"session_secure"`

	// 数据库配置
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`

	// 博客配置
	BlogPolicy         string `mapstructure:"blog_policy"`
	BlogBootstrapAdmin bool   `mapstructure:"blog_bootstrap_admin"`

	// 缓存提供者配置
	CacheType          string        `mapstructure:"cache_type"`
	CacheRedisAddr     string        `mapstructure:"cache_redis_addr"`
	CacheRedisPassword string        `mapstructure:"cache_redis_password"`
	CacheRedisDB       int           `mapstructure:"cache_redis_db"`
	CacheUserTTL       time.Duration `mapstructure:"cache_user_ttl"`

	// 限流配置
	RateLimitRPS        float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst      int           `mapstructure:"rate_limit_burst"`
	RateLimitAuthRPS    float64       `mapstructure:"rate_limit_auth_rps"`
	RateLimitAuthBurst  int           `mapstructure:"rate_limit_auth_burst"`
	RateLimitExpireTime time.Duration `mapstructure:"rate_limit_expire"`
	MaxConcurrency      int64         `mapstructure:"max_concurrency"`

	// 密码哈希参数
	PasswordHashMemoryKB   uint32 `mapstructure:"password_hash_memory"`
	PasswordHashIterations uint32 `mapstructure:"password_hash_iterations"`

	// 备份存储配置
	BackupStorage        string `mapstructure:"backup_storage"`
	BackupLocalPath      string `mapstructure:"backup_local_path"`
	BackupMinioEndpoint  string `mapstructure:"backup_minio_endpoint"`
	BackupMinioAccessKey string `mapstructure:"backup_minio_access_key"`
	BackupMinioSecretKey string `mapstructure:"backup_minio_secret_key"`
	BackupMinioBucket    string `mapstructure:"backup_minio_bucket"`
	BackupMinioUseSSL    bool   `mapstructure:"backup_minio_use_ssl"`
	BackupWebDAVURL      string `mapstructure:"backup_webdav_url"`
	BackupWebDAVUsername string `mapstructure:"backup_webdav_username"`
	BackupWebDAVPassword string `mapstructure:"backup_webdav_password"`
	BackupWebDAVRoot     string `mapstructure:"backup_webdav_root"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
			os.Exit(1)
		}
		globalConfig = *cfg
	})
}

func Get() *Config {
	return &globalConfig
}

// Load 读取 .env、环境变量和默认值，返回一份新的配置
func Load() (*Config, error) {
	setDefaults()

	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "Info: .env file not found, using defaults and environment variables")
	} else {
		fmt.Fprintln(os.Stderr, "Info: Loaded configuration from .env file")
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		_ = viper.BindEnv(key)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults() {
	viper.SetDefault("app", AppBlog)

	// 服务器配置默认值
	viper.SetDefault("server_host", "0.0.0.0")
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "15s")
	viper.SetDefault("server_idle_timeout", "60s")
	viper.SetDefault("cors_allowed_origins", []string{})

	// 会话配置默认值
	viper.SetDefault("secret_key", "")
	viper.SetDefault("session_cookie_name", "session")
	viper.SetDefault("session_max_age", "24h")
	viper.SetDefault("session_secure", false)

	// 数据库配置默认值
	viper.SetDefault("db_type", "sqlite")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "postgres")
	viper.SetDefault("db_password", "")
	viper.SetDefault("db_name", "bandpress")
	viper.SetDefault("db_file_path", "")
	viper.SetDefault("db_max_open_conns", 25)
	viper.SetDefault("db_max_idle_conns", 5)
	viper.SetDefault("db_conn_max_lifetime", 3600)

	// 博客配置默认值
	viper.SetDefault("blog_policy", "role")
	viper.SetDefault("blog_bootstrap_admin", true)

	// 缓存提供者配置默认值
	viper.SetDefault("cache_type", "memory")
	viper.SetDefault("cache_redis_addr", "localhost:6379")
	viper.SetDefault("cache_redis_password", "")
	viper.SetDefault("cache_redis_db", 0)
	viper.SetDefault("cache_user_ttl", "5m")

	// 限流配置默认值
	viper.SetDefault("rate_limit_rps", 20.0)
	viper.SetDefault("rate_limit_burst", 40)
	viper.SetDefault("rate_limit_auth_rps", 1.0)
	viper.SetDefault("rate_limit_auth_burst", 5)
	viper.SetDefault("rate_limit_expire", "10m")
	viper.SetDefault("max_concurrency", 100)

	viper.SetDefault("password_hash_memory", 64*1024)
	viper.SetDefault("password_hash_iterations", 3)

	// 备份存储默认值
	viper.SetDefault("backup_storage", "local")
	viper.SetDefault("backup_local_path", "./data/backups")
	viper.SetDefault("backup_minio_endpoint", "")
	viper.SetDefault("backup_minio_access_key", "")
	viper.SetDefault("backup_minio_secret_key", "")
	viper.SetDefault("backup_minio_bucket", "bandpress-backups")
	viper.SetDefault("backup_minio_use_ssl", false)
	viper.SetDefault("backup_webdav_url", "")
	viper.SetDefault("backup_webdav_username", "")
	viper.SetDefault("backup_webdav_password", "")
	viper.SetDefault("backup_webdav_root", "/bandpress")
}

func (c *Config) normalize() {
	if c.App == "" {
		c.App = AppBlog
	}
	if c.SessionCookieName == "" {
		c.SessionCookieName = "session"
	}
	if c.SessionMaxAge <= 0 {
		c.SessionMaxAge = 24 * time.Hour
	}
	if c.CacheUserTTL <= 0 {
		c.CacheUserTTL = 5 * time.Minute
	}
}

// UsingDefaultSecret 是否仍在使用不安全的默认密钥
func (c *Config) UsingDefaultSecret() bool {
	return c.SecretKey == "" || c.SecretKey == DefaultSecretKey
}

// Secret 返回会话签名密钥，未设置时回退到 DefaultSecretKey
func (c *Config) Secret() []byte {
	if c.SecretKey == "" {
		return []byte(DefaultSecretKey)
	}
	return []byte(c.SecretKey)
}

// SQLitePath 返回当前应用的数据库文件，每个应用一个文件
func (c *Config) SQLitePath() string {
	if c.DBFilePath != "" {
		return c.DBFilePath
	}
	app := c.App
	if app == "" {
		app = AppBlog
	}
	return filepath.Join(".", "data", app+".db")
}

// Addr 返回监听地址，格式为 "host:port"
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// ValidateApp 检查应用名称
func ValidateApp(app string) error {
	switch app {
	case AppBlog, AppCatalog:
		return nil
	default:
		return fmt.Errorf("unknown app %q (expected %q or %q)", app, AppBlog, AppCatalog)
	}
}
