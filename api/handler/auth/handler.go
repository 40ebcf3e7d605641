package auth

import (
	"log"
	"net/http"

	"github.com/anoixa/bandpress/api/common"
	svcAuth "github.com/anoixa/bandpress/internal/auth"
	"github.com/anoixa/bandpress/internal/session"
	"github.com/anoixa/bandpress/utils"
	"github.com/gin-gonic/gin"
)

// 成功提示
const (
	MsgRegistered = "Registration successful! Please log in..."
	MsgLoggedIn   = "Logged in successfully!"
	MsgLoggedOut  = "Logged out successfully!"
)

// Handler 注册、登录、登出
type Handler struct {
	svc *svcAuth.Service
}

// NewHandler 创建认证处理器
func NewHandler(svc *svcAuth.Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

type loginRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// RegisterForm GET /register
func (h *Handler) RegisterForm(c *gin.Context) {
	common.RespondView(c, gin.H{"fields": []string{"username", "email", "password"}})
}

// Register POST /register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if !common.BindForm(c, &req, "username", "email", "password") {
		return
	}

	if _, err := h.svc.Register(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
		common.HandleError(c, err, "/register")
		return
	}

	common.RedirectWithFlash(c, "/login", session.FlashSuccess, MsgRegistered)
}

// LoginForm GET /login
func (h *Handler) LoginForm(c *gin.Context) {
	common.RespondView(c, gin.H{"fields": []string{"username", "password"}})
}

// Login POST /login
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !common.BindForm(c, &req, "username", "password") {
		return
	}

	user, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		log.Printf("[Auth] Failed login for %s from %s", utils.SanitizeLogUsername(req.Username), c.ClientIP())
		common.HandleError(c, err, "/login")
		return
	}

	s := common.Session(c)
	if s == nil {
		common.RespondError(c, http.StatusInternalServerError, "Session not initialized")
		return
	}
	s.Login(user.ID)
	common.RedirectWithFlash(c, "/", session.FlashSuccess, MsgLoggedIn)
}

// Logout GET /logout
func (h *Handler) Logout(c *gin.Context) {
	if s := common.Session(c); s != nil {
		s.Logout()
	}
	common.RedirectWithFlash(c, "/", session.FlashSuccess, MsgLoggedOut)
}
