package accounts

import (
	"errors"

	"github.com/anoixa/bandpress/database/models"
	"gorm.io/gorm"
)

// Repository 用户仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的用户仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB 返回底层数据库连接
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CreateUser 创建用户
func (r *Repository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// GetUserByID 通过 ID 获取用户，不存在时返回 nil, nil
func (r *Repository) GetUserByID(id uint) (*models.User, error) {
	return r.first("id = ?", id)
}

// GetUserByUsername 通过用户名获取用户
func (r *Repository) GetUserByUsername(username string) (*models.User, error) {
	return r.first("username = ?", username)
}

// GetUserByEmail 通过邮箱获取用户
func (r *Repository) GetUserByEmail(email string) (*models.User, error) {
	return r.first("email = ?", email)
}

func (r *Repository) first(query string, args ...interface{}) (*models.User, error) {
	var user models.User
	err := r.db.Where(query, args...).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// ExistsByUsername 用户名是否已被占用
func (r *Repository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ExistsByEmail 邮箱是否已被占用
func (r *Repository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// ListUsers 按注册顺序列出所有用户
func (r *Repository) ListUsers() ([]*models.User, error) {
	var users []*models.User
	err := r.db.Order("id asc").Find(&users).Error
	return users, err
}

// CountAdmins 管理员数量
func (r *Repository) CountAdmins() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("is_admin = ?", true).Count(&count).Error
	return count, err
}

// DeleteResult 级联删除统计
type DeleteResult struct {
	Posts    int64
	Comments int64
}

// DeleteWithContent 删除用户及其全部内容
// 顺序：用户文章下的评论 -> 用户自己的评论 -> 用户文章 -> 用户
// 必须在调用方的事务中执行
func (r *Repository) DeleteWithContent(userID uint) (DeleteResult, error) {
	var result DeleteResult

	ownPosts := r.db.Model(&models.Post{}).Select("id").Where("author_id = ?", userID)
	res := r.db.Where("post_id IN (?) OR author_id = ?", ownPosts, userID).Delete(&models.Comment{})
	if res.Error != nil {
		return result, res.Error
	}
	result.Comments = res.RowsAffected

	res = r.db.Where("author_id = ?", userID).Delete(&models.Post{})
	if res.Error != nil {
		return result, res.Error
	}
	result.Posts = res.RowsAffected

	if err := r.db.Delete(&models.User{}, userID).Error; err != nil {
		return result, err
	}
	return result, nil
}
