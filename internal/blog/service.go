// Package blog 文章、评论与用户管理
//
// 每个改变状态的操作都在一个工作单元里完成：先查实体（不存在返回 NotFoundError），
// 再过授权策略，最后写库并提交。
package blog

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/anoixa/bandpress/database"
	"github.com/anoixa/bandpress/database/models"
	"github.com/anoixa/bandpress/database/repo/posts"
	"github.com/anoixa/bandpress/internal/auth"
	"github.com/anoixa/bandpress/internal/errs"
	"github.com/anoixa/bandpress/internal/policy"
)

const maxTitleLen = 100

// PostInput 文章表单
type PostInput struct {
	Title   string
	Content string
}

func (in PostInput) validate() error {
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return errs.Validation("title", fmt.Sprintf("Title must be at most %d characters", maxTitleLen))
	}
	return nil
}

// PostView 文章详情：文章、作者、按时间正序的评论
type PostView struct {
	Post     *models.Post      `json:"post"`
	Comments []*models.Comment `json:"comments"`
}

// Service 博客服务
type Service struct {
	db     database.Provider
	policy policy.Policy
	auth   *auth.Service
}

// NewService 创建博客服务
func NewService(db database.Provider, p policy.Policy, authService *auth.Service) *Service {
	return &Service{db: db, policy: p, auth: authService}
}

// Policy 当前生效的授权策略
func (s *Service) Policy() policy.Policy {
	return s.policy
}

// ListPosts 首页文章列表，最新的在前
func (s *Service) ListPosts(ctx context.Context) ([]*posts.PostSummary, error) {
	var list []*posts.PostSummary
	err := database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		var err error
		list, err = uow.Posts().ListPosts()
		return err
	})
	return list, err
}

// GetPost 文章详情
func (s *Service) GetPost(ctx context.Context, id uint) (*PostView, error) {
	var view PostView
	err := database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		post, err := uow.Posts().GetPostByID(id)
		if err != nil {
			return err
		}
		if post == nil {
			return errs.NotFound("post", id)
		}
		comments, err := uow.Posts().ListComments(id)
		if err != nil {
			return err
		}
		view.Post = post
		view.Comments = comments
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// CheckCreatePost 创建文章前的授权检查（用于展示表单）
func (s *Service) CheckCreatePost(actor *policy.Actor) error {
	return s.policy.Check(actor, policy.ActionCreate, policy.PostResource(nil))
}

// CreatePost 创建文章
func (s *Service) CreatePost(ctx context.Context, actor *policy.Actor, in PostInput) (*models.Post, error) {
	if err := s.CheckCreatePost(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	post := &models.Post{Title: in.Title, Content: in.Content, AuthorID: actor.ID}
	err := database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		return uow.Posts().CreatePost(post)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// GetPostForEdit 读取待编辑的文章，先判断存在再判断权限
func (s *Service) GetPostForEdit(ctx context.Context, actor *policy.Actor, id uint) (*models.Post, error) {
	var post *models.Post
	err := database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		var err error
		post, err = uow.Posts().GetPostByID(id)
		if err != nil {
			return err
		}
		if post == nil {
			return errs.NotFound("post", id)
		}
		return s.policy.Check(actor, policy.ActionEdit, policy.PostResource(post))
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost 修改文章标题和内容，最后写入者生效
func (s *Service) UpdatePost(ctx context.Context, actor *policy.Actor, id uint, in PostInput) (*models.Post, error) {
	var post *models.Post
	err := database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		var err error
		post, err = uow.Posts().GetPostByID(id)
		if err != nil {
			return err
		}
		if post == nil {
			return errs.NotFound("post", id)
		}
		if err := s.policy.Check(actor, policy.ActionEdit, policy.PostResource(post)); err != nil {
			return err
		}
		if err := in.validate(); err != nil {
			return err
		}
		post.Title = in.Title
		post.Content = in.Content
		return uow.Posts().UpdatePost(post)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost 删除文章及其全部评论
func (s *Service) DeletePost(ctx context.Context, actor *policy.Actor, id uint) error {
	return database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		post, err := uow.Posts().GetPostByID(id)
		if err != nil {
			return err
		}
		if post == nil {
			return errs.NotFound("post", id)
		}
		if err := s.policy.Check(actor, policy.ActionDelete, policy.PostResource(post)); err != nil {
			return err
		}
		removed, err := uow.Posts().DeletePost(id)
		if err != nil {
			return err
		}
		log.Printf("[Blog] Post %d deleted by user %d with %d comments", id, actor.ID, removed)
		return nil
	})
}

// AddComment 给文章添加评论
func (s *Service) AddComment(ctx context.Context, actor *policy.Actor, postID uint, content string) (*models.Comment, error) {
	var comment *models.Comment
	err := database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		post, err := uow.Posts().GetPostByID(postID)
		if err != nil {
			return err
		}
		if post == nil {
			return errs.NotFound("post", postID)
		}
		if err := s.policy.Check(actor, policy.ActionCreate, policy.CommentResource(nil)); err != nil {
			return err
		}
		comment = &models.Comment{Content: content, AuthorID: actor.ID, PostID: postID}
		return uow.Posts().CreateComment(comment)
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment 删除评论，返回评论所属文章 ID 供跳转使用
// 授权失败时同样返回文章 ID
func (s *Service) DeleteComment(ctx context.Context, actor *policy.Actor, id uint) (uint, error) {
	var postID uint
	err := database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		comment, err := uow.Posts().GetCommentByID(id)
		if err != nil {
			return err
		}
		if comment == nil {
			return errs.NotFound("comment", id)
		}
		postID = comment.PostID
		if err := s.policy.Check(actor, policy.ActionDelete, policy.CommentResource(comment)); err != nil {
			return err
		}
		return uow.Posts().DeleteComment(id)
	})
	return postID, err
}

// ListUsers 全部用户
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		var err error
		users, err = uow.Users().ListUsers()
		return err
	})
	return users, err
}

// DeleteUser 删除用户及其文章（含文章下所有评论）和评论
func (s *Service) DeleteUser(ctx context.Context, actor *policy.Actor, id uint) error {
	err := database.RunInUnitOfWork(ctx, s.db, func(uow *database.UnitOfWork) error {
		user, err := uow.Users().GetUserByID(id)
		if err != nil {
			return err
		}
		if user == nil {
			return errs.NotFound("user", id)
		}
		if err := s.policy.Check(actor, policy.ActionDelete, policy.UserResource(user)); err != nil {
			return err
		}
		res, err := uow.Users().DeleteWithContent(id)
		if err != nil {
			return err
		}
		log.Printf("[Blog] User %d deleted by admin %d (%d posts, %d comments)", id, actor.ID, res.Posts, res.Comments)
		return nil
	})
	if err != nil {
		return err
	}

	// 提交之后再清缓存，避免并发请求把旧数据写回
	if s.auth != nil {
		s.auth.InvalidateUser(ctx, id)
	}
	return nil
}
