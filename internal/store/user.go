package store

import (
	"context"
	"fmt"
	"time"

	"curiohub/internal/model"
)

// FindUserByEmail 按邮箱查找用户。邮箱必须在调用前统一为小写。
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// CreateUser 插入新用户。邮箱冲突返回 ErrDuplicate。
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// SetResetToken 写入重置密钥哈希与过期时间（两者同时写入）。
func (s *Store) SetResetToken(ctx context.Context, userID uint, tokenHash string, expiry time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_token_hash":   tokenHash,
			"reset_token_expiry": expiry,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearResetToken 清空重置状态（哈希与过期时间一起清）。
func (s *Store) ClearResetToken(ctx context.Context, userID uint) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_token_hash":   "",
			"reset_token_expiry": nil,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	return nil
}

// ConsumeResetToken 原子地消费一个重置密钥：
// 只有哈希匹配且尚未过期的行才会被更新，更新同时写入新密码哈希并清空重置状态。
// 两个并发调用只有一个能命中行，落败方得到 ErrNotFound。
func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, newPasswordHash string) error {
	if tokenHash == "" {
		return ErrNotFound
	}
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("reset_token_hash = ? AND reset_token_expiry > ?", tokenHash, now).
		Updates(map[string]interface{}{
			"password_hash":      newPasswordHash,
			"reset_token_hash":   "",
			"reset_token_expiry": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("consume reset token: %w", translateError(res.Error))
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
