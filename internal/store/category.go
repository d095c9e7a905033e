package store

import (
	"context"

	"curiohub/internal/model"
)

// ListCategories 返回全部分类。
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := s.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, translateError(err)
	}
	return categories, nil
}

// GetCategory 按 ID 查找分类。
func (s *Store) GetCategory(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &category, nil
}

// CreateCategory 创建分类。名称冲突返回 ErrDuplicate。
func (s *Store) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// UpdateCategory 按 ID 更新给定字段，返回更新后的分类。
func (s *Store) UpdateCategory(ctx context.Context, id uint, patch map[string]interface{}) (*model.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(category).Updates(patch).Error; err != nil {
		return nil, translateError(err)
	}
	return s.GetCategory(ctx, id)
}

// DeleteCategory 删除分类。
func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Category{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
