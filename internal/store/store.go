// Package store 提供基于 gorm 的持久化层。
//
// 唯一性（邮箱、分类名）与单行条件更新的原子性都交给数据库保证，
// 上层不再加锁。
package store

import (
	"errors"

	"curiohub/internal/model"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在（或条件更新未命中任何行）。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 违反唯一约束。
	ErrDuplicate = errors.New("duplicate record")
)

// Store 封装所有数据表的读写。
type Store struct {
	db *gorm.DB
}

// New 创建 Store。
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate 建表/迁移所有模型。
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&model.User{}, &model.Category{}, &model.Subcategory{})
}

// translateError 把底层驱动错误翻译为包级哨兵错误。
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrDuplicate
	}
	return err
}
