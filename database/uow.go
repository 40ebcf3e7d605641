package database

import (
	"context"

	"github.com/anoixa/bandpress/database/repo/accounts"
	"github.com/anoixa/bandpress/database/repo/catalog"
	"github.com/anoixa/bandpress/database/repo/posts"
	"gorm.io/gorm"
)

// UnitOfWork 一次操作的工作单元
// 所有仓库共享同一个事务，fn 返回 nil 时提交一次，否则回滚
type UnitOfWork struct {
	tx *gorm.DB

	users   *accounts.Repository
	posts   *posts.Repository
	catalog *catalog.Repository
}

// RunInUnitOfWork 在新的工作单元中执行 fn
func RunInUnitOfWork(ctx context.Context, p Provider, fn func(uow *UnitOfWork) error) error {
	return p.TransactionWithContext(ctx, func(tx *gorm.DB) error {
		return fn(&UnitOfWork{tx: tx})
	})
}

// Tx 返回事务句柄
func (u *UnitOfWork) Tx() *gorm.DB {
	return u.tx
}

// Users 用户仓库
func (u *UnitOfWork) Users() *accounts.Repository {
	if u.users == nil {
		u.users = accounts.NewRepository(u.tx)
	}
	return u.users
}

// Posts 文章与评论仓库
func (u *UnitOfWork) Posts() *posts.Repository {
	if u.posts == nil {
		u.posts = posts.NewRepository(u.tx)
	}
	return u.posts
}

// Catalog 乐队目录仓库
func (u *UnitOfWork) Catalog() *catalog.Repository {
	if u.catalog == nil {
		u.catalog = catalog.NewRepository(u.tx)
	}
	return u.catalog
}
