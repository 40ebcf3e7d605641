package core

import (
	"net/http"
	"time"

	"github.com/anoixa/bandpress/api/common"
	handlerAuth "github.com/anoixa/bandpress/api/handler/auth"
	handlerBlog "github.com/anoixa/bandpress/api/handler/blog"
	handlerCatalog "github.com/anoixa/bandpress/api/handler/catalog"
	"github.com/anoixa/bandpress/api/middleware"
	"github.com/anoixa/bandpress/config"
	"github.com/anoixa/bandpress/internal/app"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// RouterDependencies 路由注册依赖
type RouterDependencies struct {
	Container       *app.Container
	AuthRateLimiter *middleware.IPRateLimiter
}

// RegisterRoutes 注册所有路由
func RegisterRoutes(router *gin.Engine, deps *RouterDependencies) {
	// 基础路由
	registerBasicRoutes(router, deps)

	switch deps.Container.GetConfig().App {
	case config.AppCatalog:
		registerCatalogRoutes(router, deps)
	default:
		registerBlogRoutes(router, deps)
	}
}

// registerBasicRoutes 注册基础路由
func registerBasicRoutes(router *gin.Engine, deps *RouterDependencies) {
	router.GET("/health", func(context *gin.Context) {
		checks := gin.H{
			"database": checkDatabaseHealth(deps.Container.GetDatabaseProvider()),
			"cache":    checkCacheHealth(deps.Container.GetCacheProvider()),
		}
		httpStatus := http.StatusOK
		if checks["database"] != "ok" {
			httpStatus = http.StatusServiceUnavailable
		}
		if result := checks["cache"]; result != "ok" && result != "disabled" {
			httpStatus = http.StatusServiceUnavailable
		}
		context.JSON(httpStatus, gin.H{
			"status":  "ok",
			"app":     deps.Container.GetConfig().App,
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks":  checks,
		})
	})

	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	router.GET("/metrics", func(context *gin.Context) {
		context.JSON(http.StatusOK, middleware.GetMetrics())
	})
	router.GET("/metrics/prometheus", middleware.PrometheusHandler())
}

// registerBlogRoutes 注册博客路由
func registerBlogRoutes(router *gin.Engine, deps *RouterDependencies) {
	c := deps.Container
	authHandler := handlerAuth.NewHandler(c.Auth)
	blogHandler := handlerBlog.NewHandler(c.Blog)

	router.GET("/", blogHandler.Index)

	// 认证
	router.GET("/register", authHandler.RegisterForm)
	router.POST("/register", deps.AuthRateLimiter.Middleware(), authHandler.Register)
	router.GET("/login", authHandler.LoginForm)
	router.POST("/login", deps.AuthRateLimiter.Middleware(), authHandler.Login)
	router.GET("/logout", middleware.RequireLogin(), authHandler.Logout)

	router.GET("/post/:id", blogHandler.ViewPost)

	loggedIn := router.Group("")
	loggedIn.Use(middleware.RequireLogin())
	{
		loggedIn.GET("/post/new", blogHandler.NewPostForm)
		loggedIn.POST("/post/new", blogHandler.CreatePost)
		loggedIn.GET("/post/:id/edit", blogHandler.EditPostForm)
		loggedIn.POST("/post/:id/edit", blogHandler.UpdatePost)
		loggedIn.GET("/post/:id/delete", blogHandler.DeletePost)
		loggedIn.POST("/post/:id/comment", blogHandler.AddComment)
		loggedIn.GET("/comment/:id/delete", blogHandler.DeleteComment)
	}

	adminGroup := router.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin())
	{
		adminGroup.GET("/users", blogHandler.ListUsers)
		adminGroup.GET("/user/:id/delete", blogHandler.DeleteUser)
	}
}

// registerCatalogRoutes 注册乐队目录路由
func registerCatalogRoutes(router *gin.Engine, deps *RouterDependencies) {
	h := handlerCatalog.NewHandler(deps.Container.Catalog)

	router.GET("/", h.Index)

	// 录入
	router.GET("/bands/add", h.AddBandForm)
	router.POST("/bands/add", h.AddBand)
	router.GET("/members/add", h.AddMemberForm)
	router.POST("/members/add", h.AddMember)
	router.GET("/albums/add", h.AddAlbumForm)
	router.POST("/albums/add", h.AddAlbum)
	router.GET("/song/add", h.AddSongForm)
	router.POST("/song/add", h.AddSong)
	router.GET("/songmember/add", h.AddSongMemberForm)
	router.POST("/songmember/add", h.AddSongMember)

	memberships := router.Group("/memberships")
	{
		memberships.GET("/add", h.AddMembershipForm)
		memberships.POST("/add", h.AddMembership)
		memberships.GET("/edit/:id", h.EditMembershipForm)
		memberships.POST("/edit/:id", h.EditMembership)
		memberships.GET("/delete/:id", h.DeleteMembership)
	}

	// 浏览
	router.GET("/bands/view", h.ViewBands)
	router.GET("/bands/view/:id", h.ViewBand)
	router.GET("/album/:id", h.ViewAlbum)
	router.GET("/member/:id", h.ViewMember)
	router.GET("/song/:id", h.ViewSong)
	router.GET("/get_albums/:bandId", h.GetAlbums)

	// 删除（级联）
	router.GET("/bands/delete/:id", h.DeleteBand)
	router.GET("/members/delete/:id", h.DeleteMember)
	router.GET("/albums/delete/:id", h.DeleteAlbum)
	router.GET("/song/delete/:id", h.DeleteSong)
	router.GET("/songmember/delete/:id", h.DeleteSongMember)

	router.GET("/admin/data", h.ManageData)
}
