package middleware

import (
	"context"
	"log"

	"github.com/anoixa/bandpress/api/common"
	"github.com/anoixa/bandpress/database/models"
	"github.com/anoixa/bandpress/internal/policy"
	"github.com/anoixa/bandpress/internal/session"
	"github.com/gin-gonic/gin"
)

// UserResolver 根据会话中的用户 ID 解析用户
type UserResolver interface {
	ResolveUser(ctx context.Context, id uint) (*models.User, error)
}

// Session 为每个请求加载会话
func Session(mgr *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(session.ContextKey, mgr.Load(c.Request))
		c.Next()
	}
}

// CurrentUser 解析当前用户；用户已被删除时清除会话中的登录状态
func CurrentUser(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := common.Session(c)
		if s == nil || s.UserID == 0 {
			c.Next()
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), s.UserID)
		switch {
		case err != nil:
			log.Printf("[Session] Failed to resolve user %d: %v", s.UserID, err)
		case user == nil:
			s.Logout()
		default:
			c.Set(common.CurrentUserKey, user)
		}
		c.Next()
	}
}

// RequireLogin 未登录时跳转到登录页
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if common.CurrentUser(c) == nil {
			common.RedirectWithFlash(c, "/login", session.FlashInfo, policy.MsgLoginRequired)
			return
		}
		c.Next()
	}
}

// RequireAdmin 非管理员跳转到首页
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := common.CurrentUser(c)
		if user == nil {
			common.RedirectWithFlash(c, "/login", session.FlashInfo, policy.MsgLoginRequired)
			return
		}
		if !user.IsAdmin {
			common.RedirectWithFlash(c, "/", session.FlashError, policy.MsgAdminRequired)
			return
		}
		c.Next()
	}
}
