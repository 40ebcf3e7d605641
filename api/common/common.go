package common

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/anoixa/bandpress/database/models"
	"github.com/anoixa/bandpress/internal/errs"
	"github.com/anoixa/bandpress/internal/session"
	"github.com/anoixa/bandpress/utils"
	"github.com/gin-gonic/gin"
)

// CurrentUserKey gin 上下文中的当前用户
const CurrentUserKey = "current_user"

type Response struct {
	Status  string          `json:"status"`
	Msg     string          `json:"msg"`
	Data    interface{}     `json:"data,omitempty"`
	Flashes []session.Flash `json:"flashes,omitempty"`
}

func Respond(c *gin.Context, httpStatus int, status string, message string, data interface{}) {
	flashes := popFlashes(c)
	// Cookie 必须在写响应头之前设置
	SaveSession(c)
	c.JSON(httpStatus, Response{
		Status:  status,
		Msg:     message,
		Data:    data,
		Flashes: flashes,
	})
}

// RespondSuccess sends a success response with data.
func RespondSuccess(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, "success", "", data)
}

// RespondError sends an error response with message.
func RespondError(c *gin.Context, httpStatus int, message string) {
	Respond(c, httpStatus, "error", message, nil)
}

// RespondErrorAbort sends an error response and stops the handler chain.
func RespondErrorAbort(c *gin.Context, httpStatus int, message string) {
	RespondError(c, httpStatus, message)
	c.Abort()
}

// RespondView 页面视图：取出待展示的提示消息一起返回
func RespondView(c *gin.Context, data interface{}) {
	RespondSuccess(c, data)
}

// Session 当前请求的会话，未经过会话中间件时返回 nil
func Session(c *gin.Context) *session.Session {
	v, ok := c.Get(session.ContextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}

// CurrentUser 当前登录用户，匿名返回 nil
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// AddFlash 向会话追加提示消息
func AddFlash(c *gin.Context, category, message string) {
	if s := Session(c); s != nil {
		s.AddFlash(category, message)
	}
}

// SaveSession 在写响应头之前写回会话 Cookie
func SaveSession(c *gin.Context) {
	s := Session(c)
	if s == nil {
		return
	}
	if err := s.Save(c.Writer); err != nil {
		log.Printf("[Session] Failed to save session: %v", err)
	}
}

// Redirect 保存会话后 302 跳转
func Redirect(c *gin.Context, location string) {
	SaveSession(c)
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// RedirectWithFlash 附带提示消息跳转
func RedirectWithFlash(c *gin.Context, location, category, message string) {
	AddFlash(c, category, message)
	Redirect(c, location)
}

// HandleError 统一错误映射
//   - 校验、认证、授权失败：带错误提示跳转到 redirectTo
//   - 未找到：404
//   - 客户端已断开：不再写响应
//   - 其他：记录日志后 500
func HandleError(c *gin.Context, err error, redirectTo string) {
	if msg := errs.UserMessage(err); msg != "" {
		RedirectWithFlash(c, redirectTo, session.FlashError, msg)
		return
	}
	if errs.IsNotFound(err) {
		RespondErrorAbort(c, http.StatusNotFound, "Not Found")
		return
	}
	if utils.IsClientDisconnect(err) {
		c.Abort()
		return
	}
	log.Printf("[Server] %s %s failed: %s", c.Request.Method, c.Request.URL.Path, utils.SanitizeLogMessage(err.Error()))
	RespondErrorAbort(c, http.StatusInternalServerError, "Internal server error")
}

// BadRequest 表单字段缺失或格式错误
func BadRequest(c *gin.Context, err error) {
	RespondErrorAbort(c, http.StatusBadRequest, err.Error())
}

// BindForm 绑定表单，失败时已写入 400
// required 中的字段只要求出现在表单里，空串照常放行
func BindForm(c *gin.Context, obj interface{}, required ...string) bool {
	if err := c.ShouldBind(obj); err != nil {
		BadRequest(c, err)
		return false
	}
	for _, name := range required {
		if _, ok := c.GetPostForm(name); !ok {
			BadRequest(c, fmt.Errorf("missing form field %q", name))
			return false
		}
	}
	return true
}

func popFlashes(c *gin.Context) []session.Flash {
	s := Session(c)
	if s == nil {
		return nil
	}
	return s.PopFlashes()
}

// ParamID 解析路径中的整数 ID，格式错误按不存在处理
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		RespondErrorAbort(c, http.StatusNotFound, "Not Found")
		return 0, false
	}
	return uint(id), true
}
