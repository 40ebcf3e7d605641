package auth

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anoixa/bandpress/cache"
	"github.com/anoixa/bandpress/config"
	"github.com/anoixa/bandpress/database"
	"github.com/anoixa/bandpress/database/dbtest"
	"github.com/anoixa/bandpress/database/models"
	"github.com/anoixa/bandpress/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache 测试用缓存
type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
	gets  int
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string][]byte)}
}

func (m *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = data
	return nil
}

func (m *mapCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	data, ok := m.items[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *mapCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *mapCache) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok, nil
}

func (m *mapCache) Health(context.Context) error { return nil }
func (m *mapCache) Close() error                 { return nil }
func (m *mapCache) Name() string                 { return "map" }

func testConfig() *config.Config {
	return &config.Config{
		PasswordHashMemoryKB:   8 * 1024,
		PasswordHashIterations: 1,
		CacheUserTTL:           time.Minute,
	}
}

func newTestService(t *testing.T) (*Service, database.Provider, *mapCache) {
	t.Helper()
	p := dbtest.NewProvider(t, config.AppBlog)
	c := newMapCache()
	return NewService(p, c, testConfig()), p, c
}

func countUsers(t *testing.T, p database.Provider) int64 {
	t.Helper()
	var n int64
	require.NoError(t, p.DB().Model(&models.User{}).Count(&n).Error)
	return n
}

func TestRegister_StoresHashNotPlaintext(t *testing.T) {
	s, p, _ := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.False(t, user.IsAdmin)

	var stored models.User
	require.NoError(t, p.DB().First(&stored, user.ID).Error)
	assert.NotEqual(t, "pw123", stored.PasswordHash)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegister_DuplicateUsernameOrEmail(t *testing.T) {
	s, p, _ := newTestService(t)
	ctx := context.Background()

	original, err := s.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		email    string
		field    string
		message  string
	}{
		{"same username", "alice", "other@x.com", "username", MsgUsernameTaken},
		{"same email", "bob", "alice@x.com", "email", MsgEmailTaken},
		{"both", "alice", "alice@x.com", "username", MsgUsernameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(ctx, tt.username, tt.email, "different")
			var ve *errs.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.message, ve.Message)
		})
	}

	assert.Equal(t, int64(1), countUsers(t, p))

	// 原账号不受影响
	var stored models.User
	require.NoError(t, p.DB().First(&stored, original.ID).Error)
	assert.Equal(t, "alice@x.com", stored.Email)
	_, err = s.Login(ctx, "alice", "pw123")
	assert.NoError(t, err)
}

func TestRegister_FieldTooLong(t *testing.T) {
	s, p, _ := newTestService(t)

	_, err := s.Register(context.Background(), "abcdefghijklmnopqrstuvwxyz012345", "a@x.com", "pw")
	assert.True(t, errs.IsValidation(err))
	assert.Equal(t, int64(0), countUsers(t, p))
}

func TestRegister_LengthCountsCharacters(t *testing.T) {
	s, p, _ := newTestService(t)
	ctx := context.Background()

	name := strings.Repeat("ж", maxUsernameLen)
	user, err := s.Register(ctx, name, "zh@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, name, user.Username)

	_, err = s.Register(ctx, name+"ж", "zh2@x.com", "pw")
	assert.True(t, errs.IsValidation(err))
	assert.Equal(t, int64(1), countUsers(t, p))
}

func TestLogin_UnknownUserStillVerifiesHash(t *testing.T) {
	s, _, _ := newTestService(t)
	assert.Empty(t, s.dummyHash)

	_, err := s.Login(context.Background(), "nobody", "pw123")
	var ae *errs.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, MsgInvalidCredentials, ae.Message)

	// 占位哈希与真实用户使用相同的 argon2 参数
	assert.True(t, strings.HasPrefix(s.dummyHash, "$argon2id$"))
	assert.Contains(t, s.dummyHash, "$m=8192,t=1,")
}

func TestLogin(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{"correct", "alice", "pw123", false},
		{"wrong password", "alice", "pw124", true},
		{"unknown user", "bob", "pw123", true},
		{"empty password", "alice", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := s.Login(ctx, tt.username, tt.password)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "alice", user.Username)
				return
			}
			var ae *errs.AuthError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, MsgInvalidCredentials, ae.Message)
			assert.Nil(t, user)
		})
	}
}

func TestResolveUser_ReadsThroughCache(t *testing.T) {
	s, p, c := newTestService(t)
	ctx := context.Background()

	user, err := s.Register(ctx, "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	got, err := s.ResolveUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)

	exists, _ := c.Exists(ctx, cache.User.BuildID(user.ID))
	assert.True(t, exists)

	// 删除后缓存仍然命中，直到失效
	require.NoError(t, p.DB().Delete(&models.User{}, user.ID).Error)
	got, err = s.ResolveUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	s.InvalidateUser(ctx, user.ID)
	got, err = s.ResolveUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveUser_AnonymousAndWithoutCache(t *testing.T) {
	p := dbtest.NewProvider(t, config.AppBlog)
	s := NewService(p, nil, testConfig())
	ctx := context.Background()

	got, err := s.ResolveUser(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, got)

	user, err := s.Register(ctx, "bob", "bob@x.com", "pw")
	require.NoError(t, err)
	got, err = s.ResolveUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	s.InvalidateUser(ctx, user.ID)
}

func TestEnsureDefaultAdmin(t *testing.T) {
	s, p, _ := newTestService(t)
	ctx := context.Background()

	password, err := s.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.Len(t, password, defaultAdminPassLen)

	admin, err := s.Login(ctx, DefaultAdminUsername, password)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	// 已有管理员时不再创建
	password, err = s.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.Empty(t, password)
	assert.Equal(t, int64(1), countUsers(t, p))
}

func TestEnsureDefaultAdmin_UsernameTaken(t *testing.T) {
	s, p, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, DefaultAdminUsername, "someone@x.com", "pw")
	require.NoError(t, err)

	password, err := s.EnsureDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.Empty(t, password)

	var admins int64
	require.NoError(t, p.DB().Model(&models.User{}).Where("is_admin = ?", true).Count(&admins).Error)
	assert.Zero(t, admins)
}
