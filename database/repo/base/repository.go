// Package base 提供通用的 Repository 基类
package base

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 通用仓库基类
type Repository[T any] struct {
	db *gorm.DB
}

// NewRepository 创建新的通用仓库
func NewRepository[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// DB 返回底层数据库连接
func (r *Repository[T]) DB() *gorm.DB {
	return r.db
}

// Create 创建记录
func (r *Repository[T]) Create(entity *T) error {
	return r.db.Omit(clause.Associations).Create(entity).Error
}

// GetByID 通过 ID 获取记录，不存在时返回 nil, nil
func (r *Repository[T]) GetByID(id uint, preloads ...string) (*T, error) {
	var entity T
	q := r.db
	for _, p := range preloads {
		q = q.Preload(p)
	}
	err := q.First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// List 获取全部记录，默认按主键排序
func (r *Repository[T]) List(order string) ([]*T, error) {
	if order == "" {
		order = "id asc"
	}
	var entities []*T
	err := r.db.Order(order).Find(&entities).Error
	return entities, err
}

// Update 保存记录（不级联关联），后写覆盖
func (r *Repository[T]) Update(entity *T) error {
	return r.db.Omit(clause.Associations).Save(entity).Error
}

// Delete 删除记录
func (r *Repository[T]) Delete(id uint) error {
	var entity T
	return r.db.Delete(&entity, id).Error
}

// DeleteWhere 按条件删除，返回删除行数
func (r *Repository[T]) DeleteWhere(query interface{}, args ...interface{}) (int64, error) {
	var entity T
	res := r.db.Where(query, args...).Delete(&entity)
	return res.RowsAffected, res.Error
}

// Count 获取记录总数
func (r *Repository[T]) Count() (int64, error) {
	var count int64
	err := r.db.Model(new(T)).Count(&count).Error
	return count, err
}

// Exists 检查记录是否存在
func (r *Repository[T]) Exists(id uint) (bool, error) {
	var count int64
	err := r.db.Model(new(T)).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindBy 根据条件查询
func (r *Repository[T]) FindBy(order string, query interface{}, args ...interface{}) ([]*T, error) {
	if order == "" {
		order = "id asc"
	}
	var entities []*T
	err := r.db.Where(query, args...).Order(order).Find(&entities).Error
	return entities, err
}
