package blog

import (
	"fmt"

	"github.com/anoixa/bandpress/api/common"
	svcBlog "github.com/anoixa/bandpress/internal/blog"
	"github.com/anoixa/bandpress/internal/errs"
	"github.com/anoixa/bandpress/internal/policy"
	"github.com/anoixa/bandpress/internal/session"
	"github.com/gin-gonic/gin"
)

// 成功提示
const (
	MsgPostCreated    = "Post created successfully!"
	MsgPostUpdated    = "Post updated successfully!"
	MsgPostDeleted    = "Post deleted successfully!"
	MsgCommentAdded   = "Comment added"
	MsgCommentDeleted = "Comment deleted"
	MsgUserDeleted    = "User deleted"
)

// Handler 文章、评论与用户管理
type Handler struct {
	svc *svcBlog.Service
}

// NewHandler 创建博客处理器
func NewHandler(svc *svcBlog.Service) *Handler {
	return &Handler{svc: svc}
}

type postRequest struct {
	Title   string `form:"title"`
	Content string `form:"content"`
}

type commentRequest struct {
	Content string `form:"content"`
}

func actor(c *gin.Context) *policy.Actor {
	return policy.ActorFrom(common.CurrentUser(c))
}

func postPath(id uint) string {
	return fmt.Sprintf("/post/%d", id)
}

// failTo 校验失败回到表单，其余拒绝回到安全页面
func failTo(c *gin.Context, err error, form, safe string) {
	if errs.IsValidation(err) {
		common.HandleError(c, err, form)
		return
	}
	common.HandleError(c, err, safe)
}

// Index GET /
func (h *Handler) Index(c *gin.Context) {
	posts, err := h.svc.ListPosts(c.Request.Context())
	if err != nil {
		common.HandleError(c, err, "/")
		return
	}
	common.RespondView(c, gin.H{
		"posts":        posts,
		"current_user": common.CurrentUser(c),
		"policy":       h.svc.Policy().Name(),
	})
}

// NewPostForm GET /post/new
func (h *Handler) NewPostForm(c *gin.Context) {
	if err := h.svc.CheckCreatePost(actor(c)); err != nil {
		common.HandleError(c, err, "/")
		return
	}
	common.RespondView(c, gin.H{"fields": []string{"title", "content"}})
}

// CreatePost POST /post/new
func (h *Handler) CreatePost(c *gin.Context) {
	var req postRequest
	if !common.BindForm(c, &req, "title", "content") {
		return
	}

	_, err := h.svc.CreatePost(c.Request.Context(), actor(c), svcBlog.PostInput{Title: req.Title, Content: req.Content})
	if err != nil {
		failTo(c, err, "/post/new", "/")
		return
	}
	common.RedirectWithFlash(c, "/", session.FlashSuccess, MsgPostCreated)
}

// ViewPost GET /post/:id
func (h *Handler) ViewPost(c *gin.Context) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.GetPost(c.Request.Context(), id)
	if err != nil {
		common.HandleError(c, err, "/")
		return
	}
	common.RespondView(c, view)
}

// EditPostForm GET /post/:id/edit
func (h *Handler) EditPostForm(c *gin.Context) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	post, err := h.svc.GetPostForEdit(c.Request.Context(), actor(c), id)
	if err != nil {
		common.HandleError(c, err, "/")
		return
	}
	common.RespondView(c, gin.H{"post": post})
}

// UpdatePost POST /post/:id/edit
func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	var req postRequest
	if !common.BindForm(c, &req, "title", "content") {
		return
	}

	post, err := h.svc.UpdatePost(c.Request.Context(), actor(c), id, svcBlog.PostInput{Title: req.Title, Content: req.Content})
	if err != nil {
		failTo(c, err, postPath(id)+"/edit", "/")
		return
	}
	common.RedirectWithFlash(c, postPath(post.ID), session.FlashSuccess, MsgPostUpdated)
}

// DeletePost GET /post/:id/delete
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeletePost(c.Request.Context(), actor(c), id); err != nil {
		common.HandleError(c, err, "/")
		return
	}
	common.RedirectWithFlash(c, "/", session.FlashSuccess, MsgPostDeleted)
}

// AddComment POST /post/:id/comment
func (h *Handler) AddComment(c *gin.Context) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if !common.BindForm(c, &req, "content") {
		return
	}

	if _, err := h.svc.AddComment(c.Request.Context(), actor(c), id, req.Content); err != nil {
		common.HandleError(c, err, postPath(id))
		return
	}
	common.RedirectWithFlash(c, postPath(id), session.FlashSuccess, MsgCommentAdded)
}

// DeleteComment GET /comment/:id/delete
func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	postID, err := h.svc.DeleteComment(c.Request.Context(), actor(c), id)
	if err != nil {
		common.HandleError(c, err, postPath(postID))
		return
	}
	common.RedirectWithFlash(c, postPath(postID), session.FlashSuccess, MsgCommentDeleted)
}

// ListUsers GET /admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		common.HandleError(c, err, "/")
		return
	}
	common.RespondView(c, gin.H{"users": users})
}

// DeleteUser GET /admin/user/:id/delete
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := common.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteUser(c.Request.Context(), actor(c), id); err != nil {
		common.HandleError(c, err, "/admin/users")
		return
	}
	common.RedirectWithFlash(c, "/admin/users", session.FlashSuccess, MsgUserDeleted)
}
