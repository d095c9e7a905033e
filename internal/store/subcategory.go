package store

import (
	"context"

	"curiohub/internal/model"
)

// ListSubcategoriesByCategory 返回某个分类下的全部子分类（带所属分类）。
func (s *Store) ListSubcategoriesByCategory(ctx context.Context, categoryID uint) ([]model.Subcategory, error) {
	subcategories := []model.Subcategory{}
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Where("category_id = ?", categoryID).
		Order("id").
		Find(&subcategories).Error; err != nil {
		return nil, translateError(err)
	}
	return subcategories, nil
}

// GetSubcategory 按 ID 查找子分类（带所属分类）。
func (s *Store) GetSubcategory(ctx context.Context, id uint) (*model.Subcategory, error) {
	var subcategory model.Subcategory
	if err := s.db.WithContext(ctx).Preload("Category").First(&subcategory, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &subcategory, nil
}

// CreateSubcategory 创建子分类。所属分类必须已存在，由调用方校验。
func (s *Store) CreateSubcategory(ctx context.Context, subcategory *model.Subcategory) error {
	if err := s.db.WithContext(ctx).Create(subcategory).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// UpdateSubcategory 按 ID 更新给定字段，返回更新后的子分类。
func (s *Store) UpdateSubcategory(ctx context.Context, id uint, patch map[string]interface{}) (*model.Subcategory, error) {
	subcategory, err := s.GetSubcategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(subcategory).Updates(patch).Error; err != nil {
		return nil, translateError(err)
	}
	return s.GetSubcategory(ctx, id)
}

// DeleteSubcategory 删除子分类。
func (s *Store) DeleteSubcategory(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&model.Subcategory{}, id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
