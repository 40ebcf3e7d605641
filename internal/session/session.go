// Package session 基于签名 Cookie 的会话
//
// 会话内容（当前用户 ID 和待展示的提示消息）编码为 HS256 JWT 存放在 Cookie 中，
// 用 SECRET_KEY 签名。签名错误或已过期的 Cookie 视为空会话。
package session

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"
)

// ContextKey gin 上下文中的会话键
const ContextKey = "session"

// 提示消息类别
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

// Flash 一次性提示消息
type Flash struct {
	Category string `json:"category" mapstructure:"category"`
	Message  string `json:"message" mapstructure:"message"`
}

// Session 单个请求的会话状态
type Session struct {
	UserID  uint    `mapstructure:"uid"`
	Flashes []Flash `mapstructure:"flashes"`

	modified bool
	mgr      *Manager
}

// Login 绑定用户
func (s *Session) Login(userID uint) {
	s.UserID = userID
	s.modified = true
}

// Logout 解除用户绑定，保留未读提示
func (s *Session) Logout() {
	if s.UserID != 0 {
		s.UserID = 0
		s.modified = true
	}
}

// AddFlash 追加提示消息
func (s *Session) AddFlash(category, message string) {
	s.Flashes = append(s.Flashes, Flash{Category: category, Message: message})
	s.modified = true
}

// PopFlashes 取出并清空提示消息
func (s *Session) PopFlashes() []Flash {
	if len(s.Flashes) == 0 {
		return nil
	}
	out := s.Flashes
	s.Flashes = nil
	s.modified = true
	return out
}

// Modified 本次请求是否修改过会话
func (s *Session) Modified() bool {
	return s.modified
}

// IsEmpty 没有用户也没有提示消息
func (s *Session) IsEmpty() bool {
	return s.UserID == 0 && len(s.Flashes) == 0
}

// Save 会话有修改时写回 Cookie
func (s *Session) Save(w http.ResponseWriter) error {
	if !s.modified || s.mgr == nil {
		return nil
	}
	if err := s.mgr.Write(w, s); err != nil {
		return err
	}
	s.modified = false
	return nil
}

// Options 会话配置
type Options struct {
	Secret     []byte
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// Manager 会话编解码与 Cookie 读写
type Manager struct {
	opts Options
	now  func() time.Time
}

// NewManager 创建会话管理器
func NewManager(opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 24 * time.Hour
	}
	return &Manager{opts: opts, now: time.Now}
}

// CookieName Cookie 名称
func (m *Manager) CookieName() string {
	return m.opts.CookieName
}

// New 创建空会话
func (m *Manager) New() *Session {
	return &Session{mgr: m}
}

// Encode 将会话编码为签名令牌
func (m *Manager) Encode(s *Session) (string, error) {
	if len(m.opts.Secret) == 0 {
		return "", errors.New("session secret is not initialized")
	}

	now := m.now()
	claims := jwt.MapClaims{
		"uid":     s.UserID,
		"flashes": s.Flashes,
		"iat":     now.Unix(),
		"exp":     now.Add(m.opts.MaxAge).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.opts.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return token, nil
}

// Decode 校验签名和有效期并解码会话
func (m *Manager) Decode(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return m.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session claims")
	}

	s := m.New()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           s,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(map[string]interface{}(claims)); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return s, nil
}

// Load 从请求 Cookie 读取会话，任何错误都返回空会话
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(m.opts.CookieName)
	if err != nil || cookie.Value == "" {
		return m.New()
	}

	s, err := m.Decode(cookie.Value)
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			log.Printf("[Session] Discarding invalid session cookie: %v", err)
		}
		// 丢弃坏 Cookie
		s = m.New()
		s.modified = true
	}
	return s
}

// Write 写 Cookie，空会话直接删除 Cookie
func (m *Manager) Write(w http.ResponseWriter, s *Session) error {
	cookie := &http.Cookie{
		Name:     m.opts.CookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	if s.IsEmpty() {
		cookie.MaxAge = -1
		http.SetCookie(w, cookie)
		return nil
	}

	value, err := m.Encode(s)
	if err != nil {
		return err
	}
	cookie.Value = value
	cookie.MaxAge = int(m.opts.MaxAge.Seconds())
	http.SetCookie(w, cookie)
	return nil
}
