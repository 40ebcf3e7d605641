// Package auth 博客用户的注册、登录与当前用户解析
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/anoixa/bandpress/cache"
	"github.com/anoixa/bandpress/config"
	"github.com/anoixa/bandpress/database"
	"github.com/anoixa/bandpress/database/models"
	"github.com/anoixa/bandpress/internal/errs"
	"github.com/anoixa/bandpress/utils"
	cryptopackage "github.com/anoixa/bandpress/utils/crypto"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// 用户可见的提示
const (
	MsgUsernameTaken      = "Username already exists"
	MsgEmailTaken         = "Email already registered"
	MsgInvalidCredentials = "Invalid username or password"
)

// 字段长度上限，与表结构一致
const (
	maxUsernameLen = 30
	maxEmailLen    = 120
)

// DefaultAdminUsername 启动时自动创建的管理员
const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@localhost"
	defaultAdminPassLen  = 16
)

// Service 认证服务
type Service struct {
	db      database.Provider
	cache   cache.Provider
	hasher  *cryptopackage.Hasher
	userTTL time.Duration

	group singleflight.Group

	// 用户不存在时也做一次同参数的哈希校验，使耗时与密码错误一致
	dummyOnce sync.Once
	dummyHash string
}

// NewService 创建认证服务，cacheProvider 可以为 nil
func NewService(db database.Provider, cacheProvider cache.Provider, cfg *config.Config) *Service {
	return &Service{
		db:    db,
		cache: cacheProvider,
		hasher: cryptopackage.NewHasher(cryptopackage.Params{
			Memory:     cfg.PasswordHashMemoryKB,
			Iterations: cfg.PasswordHashIterations,
		}),
		userTTL: cfg.CacheUserTTL,
	}
}

// Register 注册新用户
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return nil, errs.Validation("username", fmt.Sprintf("Username must be at most %d characters", maxUsernameLen))
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return nil, errs.Validation("email", fmt.Sprintf("Email must be at most %d characters", maxEmailLen))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	err = database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		users := uow.Users()
		if taken, err := users.ExistsByUsername(username); err != nil {
			return err
		} else if taken {
			return errs.Validation("username", MsgUsernameTaken)
		}
		if taken, err := users.ExistsByEmail(email); err != nil {
			return err
		} else if taken {
			return errs.Validation("email", MsgEmailTaken)
		}
		return users.CreateUser(user)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发注册被唯一索引拦下，事务已回滚，重新判断是哪个字段冲突
		return nil, s.duplicateError(ctx, email)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[Auth] Registered user %s (id=%d)", utils.SanitizeLogUsername(username), user.ID)
	return user, nil
}

func (s *Service) duplicateError(ctx context.Context, email string) error {
	var emailTaken bool
	_ = database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		var err error
		emailTaken, err = uow.Users().ExistsByEmail(email)
		return err
	})
	if emailTaken {
		return errs.Validation("email", MsgEmailTaken)
	}
	return errs.Validation("username", MsgUsernameTaken)
}

// Login 校验用户名和密码
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	var user *models.User
	err := database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		var err error
		user, err = uow.Users().GetUserByUsername(username)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		_, _ = s.hasher.Verify(password, s.dummyPasswordHash())
		return nil, &errs.AuthError{Message: MsgInvalidCredentials}
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		if errors.Is(err, cryptopackage.ErrInvalidHash) {
			log.Printf("[Auth] Stored hash of user %d is malformed", user.ID)
			return nil, &errs.AuthError{Message: MsgInvalidCredentials}
		}
		return nil, fmt.Errorf("password comparison failed: %w", err)
	}
	if !ok {
		return nil, &errs.AuthError{Message: MsgInvalidCredentials}
	}
	return user, nil
}

// dummyPasswordHash 与真实哈希参数相同的占位哈希，首次使用时生成
func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("bandpress-dummy-password")
		if err != nil {
			log.Printf("[Auth] Failed to generate dummy hash: %v", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// ResolveUser 根据会话中的用户 ID 解析当前用户，用户已不存在时返回 nil, nil
// 先读缓存，未命中时并发请求合并为一次数据库查询
func (s *Service) ResolveUser(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, nil
	}

	key := cache.User.BuildID(id)
	if s.cache != nil {
		var cached models.User
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !cache.IsCacheMiss(err) {
			log.Printf("[Auth] Cache read failed for %s: %v", key, err)
		}
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		var user *models.User
		err := database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
			var err error
			user, err = uow.Users().GetUserByID(id)
			return err
		})
		if err != nil || user == nil {
			return user, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, key, user, s.userTTL); err != nil {
				log.Printf("[Auth] Cache write failed for %s: %v", key, err)
			}
		}
		return user, nil
	})
	if err != nil {
		return nil, err
	}
	user, _ := v.(*models.User)
	return user, nil
}

// InvalidateUser 删除缓存的用户
func (s *Service) InvalidateUser(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.User.BuildID(id)); err != nil {
		log.Printf("[Auth] Failed to invalidate cached user %d: %v", id, err)
	}
}

// EnsureDefaultAdmin 没有任何管理员时创建 admin 账号，返回生成的密码
// 密码只在日志中出现这一次
func (s *Service) EnsureDefaultAdmin(ctx context.Context) (string, error) {
	var password string
	err := database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		users := uow.Users()
		admins, err := users.CountAdmins()
		if err != nil {
			return err
		}
		if admins > 0 {
			return nil
		}

		taken, err := users.ExistsByUsername(DefaultAdminUsername)
		if err != nil {
			return err
		}
		if taken {
			log.Printf("[Auth] No admin exists but username %q is taken by a regular user, skipping bootstrap", DefaultAdminUsername)
			return nil
		}

		password, err = utils.RandomPassword(defaultAdminPassLen)
		if err != nil {
			return err
		}
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		return users.CreateUser(&models.User{
			Username:     DefaultAdminUsername,
			Email:        DefaultAdminEmail,
			PasswordHash: hash,
			IsAdmin:      true,
		})
	})
	if err != nil {
		return "", fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	if password != "" {
		log.Printf("[Auth] Created default admin user %q with password: %s", DefaultAdminUsername, password)
	}
	return password, nil
}
