package posts

import (
	"errors"

	"github.com/anoixa/bandpress/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 文章与评论仓库
type Repository struct {
	db *gorm.DB
}

// NewRepository 创建新的文章仓库
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// PostSummary 首页列表项
type PostSummary struct {
	models.Post
	CommentCount int64 `json:"comment_count"`
}

// CreatePost 创建文章
func (r *Repository) CreatePost(post *models.Post) error {
	return r.db.Create(post).Error
}

// GetPostByID 获取文章（含作者），不存在时返回 nil, nil
func (r *Repository) GetPostByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Author").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// ListPosts 按创建时间倒序列出文章
func (r *Repository) ListPosts() ([]*PostSummary, error) {
	var posts []*models.Post
	if err := r.db.Preload("Author").Order("created_at desc, id desc").Find(&posts).Error; err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return []*PostSummary{}, nil
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	var counts []struct {
		PostID uint
		Total  int64
	}
	if err := r.db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	byPost := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byPost[c.PostID] = c.Total
	}

	summaries := make([]*PostSummary, len(posts))
	for i, p := range posts {
		summaries[i] = &PostSummary{Post: *p, CommentCount: byPost[p.ID]}
	}
	return summaries, nil
}

// UpdatePost 保存文章修改，后写覆盖
func (r *Repository) UpdatePost(post *models.Post) error {
	return r.db.Omit(clause.Associations).Save(post).Error
}

// DeletePost 删除文章及其评论，返回删除的评论数
func (r *Repository) DeletePost(postID uint) (int64, error) {
	res := r.db.Where("post_id = ?", postID).Delete(&models.Comment{})
	if res.Error != nil {
		return 0, res.Error
	}
	if err := r.db.Delete(&models.Post{}, postID).Error; err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// CreateComment 创建评论
func (r *Repository) CreateComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

// GetCommentByID 获取评论，不存在时返回 nil, nil
func (r *Repository) GetCommentByID(id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// ListComments 文章评论，按时间正序
func (r *Repository) ListComments(postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at asc, id asc").
		Find(&comments).Error
	return comments, err
}

// CountComments 文章评论数
func (r *Repository) CountComments(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// DeleteComment 删除评论
func (r *Repository) DeleteComment(id uint) error {
	return r.db.Delete(&models.Comment{}, id).Error
}
