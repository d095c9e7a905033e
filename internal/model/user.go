package model

import "time"

// User 表示注册用户。
//
// PasswordHash 只存 bcrypt 哈希，任何路径都不落明文。
// ResetTokenHash 与 ResetTokenExpiry 要么同时存在（重置流程进行中），
// 要么同时为空，不允许只设置其中一个。
type User struct {
	ID           uint   `gorm:"primaryKey"`                             // 用户 ID
	FullName     string `gorm:"type:varchar(191);not null"`             // 姓名
	Email        string `gorm:"type:varchar(191);uniqueIndex;not null"` // 邮箱（唯一，统一小写存储）
	PasswordHash string `gorm:"not null"`                               // bcrypt 哈希

	ResetTokenHash   string     `gorm:"type:varchar(64);index"` // 重置密钥的 SHA-256（hex），空串表示无
	ResetTokenExpiry *time.Time // 重置密钥过期时间

	CreatedAt time.Time // 创建时间
}
