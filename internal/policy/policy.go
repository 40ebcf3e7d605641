// Package policy 集中管理博客的授权规则
//
// 两种策略可通过配置切换：
//   - ownership: 作者本人才能修改、删除自己的文章和评论
//   - role:      只有管理员能创建、修改、删除文章；评论可由作者或管理员删除
//
// 所有改变状态的操作在执行前都要经过 Check。
package policy

import (
	"fmt"

	"github.com/anoixa/bandpress/database/models"
	"github.com/anoixa/bandpress/internal/errs"
)

// 策略名称
const (
	NameOwnership = "ownership"
	NameRole      = "role"
)

// Kind 资源类型
type Kind string

const (
	KindPost    Kind = "post"
	KindComment Kind = "comment"
	KindUser    Kind = "user"
)

// Action 操作类型
type Action string

const (
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// 拒绝提示
const (
	MsgLoginRequired      = "Please log in to access this page."
	MsgAdminRequired      = "Admin access required"
	MsgCannotDeleteSelf   = "You cannot delete your own account"
	MsgOwnPostsEdit       = "You can only edit your own posts"
	MsgOwnPostsDelete     = "You can only delete your own posts"
	MsgOwnCommentsDelete  = "You can only delete your own comments"
	MsgAdminsCreatePosts  = "Only admins can create posts"
	MsgAdminsEditPosts    = "Only admins can edit posts"
	MsgAdminsDeletePosts  = "Only admins can delete posts"
	msgUnsupportedRequest = "This action is not allowed"
)

// Actor 发起操作的用户，nil 表示匿名
type Actor struct {
	ID      uint
	IsAdmin bool
}

// ActorFrom 从用户模型构造 Actor
func ActorFrom(u *models.User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{ID: u.ID, IsAdmin: u.IsAdmin}
}

// Resource 被操作的资源；创建时 ID 和 OwnerID 为 0
type Resource struct {
	Kind    Kind
	ID      uint
	OwnerID uint
}

// PostResource 文章资源
func PostResource(p *models.Post) Resource {
	if p == nil {
		return Resource{Kind: KindPost}
	}
	return Resource{Kind: KindPost, ID: p.ID, OwnerID: p.AuthorID}
}

// CommentResource 评论资源
func CommentResource(c *models.Comment) Resource {
	if c == nil {
		return Resource{Kind: KindComment}
	}
	return Resource{Kind: KindComment, ID: c.ID, OwnerID: c.AuthorID}
}

// UserResource 用户资源，用户的所有者就是自己
func UserResource(u *models.User) Resource {
	if u == nil {
		return Resource{Kind: KindUser}
	}
	return Resource{Kind: KindUser, ID: u.ID, OwnerID: u.ID}
}

// Policy 授权策略
type Policy interface {
	// Name 策略名称
	Name() string
	// Check 允许时返回 nil，否则返回带提示信息的 *errs.ForbiddenError
	Check(actor *Actor, action Action, res Resource) error
}

// CanMutate 判断 actor 能否对资源执行 action
func CanMutate(p Policy, actor *Actor, action Action, res Resource) bool {
	return p.Check(actor, action, res) == nil
}

// New 按名称创建策略，空名称使用 role
func New(name string) (Policy, error) {
	switch name {
	case NameRole, "":
		return Role{}, nil
	case NameOwnership:
		return Ownership{}, nil
	default:
		return nil, fmt.Errorf("unknown authorization policy: %q", name)
	}
}

// checkUser 两种策略共用：只有管理员能删用户，且不能删自己
func checkUser(actor *Actor, action Action, res Resource) error {
	if action != ActionDelete {
		return errs.Forbidden(msgUnsupportedRequest)
	}
	if !actor.IsAdmin {
		return errs.Forbidden(MsgAdminRequired)
	}
	if res.ID == actor.ID {
		return errs.Forbidden(MsgCannotDeleteSelf)
	}
	return nil
}

// Ownership 基于作者身份的策略
type Ownership struct{}

// Name 策略名称
func (Ownership) Name() string { return NameOwnership }

// Check 作者本人才能修改、删除
func (Ownership) Check(actor *Actor, action Action, res Resource) error {
	if actor == nil {
		return errs.Forbidden(MsgLoginRequired)
	}

	switch res.Kind {
	case KindPost:
		switch action {
		case ActionCreate:
			return nil
		case ActionEdit:
			if res.OwnerID != actor.ID {
				return errs.Forbidden(MsgOwnPostsEdit)
			}
			return nil
		case ActionDelete:
			if res.OwnerID != actor.ID {
				return errs.Forbidden(MsgOwnPostsDelete)
			}
			return nil
		}
	case KindComment:
		switch action {
		case ActionCreate:
			return nil
		case ActionDelete:
			if res.OwnerID != actor.ID {
				return errs.Forbidden(MsgOwnCommentsDelete)
			}
			return nil
		}
	case KindUser:
		return checkUser(actor, action, res)
	}
	return errs.Forbidden(msgUnsupportedRequest)
}

// Role 基于管理员标记的策略
type Role struct{}

// Name 策略名称
func (Role) Name() string { return NameRole }

// Check 文章只有管理员能动；评论作者或管理员可删
func (Role) Check(actor *Actor, action Action, res Resource) error {
	if actor == nil {
		return errs.Forbidden(MsgLoginRequired)
	}

	switch res.Kind {
	case KindPost:
		if actor.IsAdmin {
			switch action {
			case ActionCreate, ActionEdit, ActionDelete:
				return nil
			}
			break
		}
		switch action {
		case ActionCreate:
			return errs.Forbidden(MsgAdminsCreatePosts)
		case ActionEdit:
			return errs.Forbidden(MsgAdminsEditPosts)
		case ActionDelete:
			return errs.Forbidden(MsgAdminsDeletePosts)
		}
	case KindComment:
		switch action {
		case ActionCreate:
			return nil
		case ActionDelete:
			if actor.IsAdmin || res.OwnerID == actor.ID {
				return nil
			}
			return errs.Forbidden(MsgOwnCommentsDelete)
		}
	case KindUser:
		return checkUser(actor, action, res)
	}
	return errs.Forbidden(msgUnsupportedRequest)
}
