package model

import "time"

// Category 表示一级分类。
//
// 名称全局唯一，Image 为缩略图，BannerImage 为详情页横幅。
type Category struct {
	ID        uint      `gorm:"primaryKey"` // 分类唯一标识
	CreatedAt time.Time // 创建时间

	Name        string `gorm:"type:varchar(191);uniqueIndex;not null"` // 分类名（唯一）
	Description string // 描述
	Image       string `gorm:"not null"` // 缩略图 URL
	BannerImage string `gorm:"not null"` // 横幅图 URL

	Subcategories []Subcategory `gorm:"foreignKey:CategoryID"` // 下属子分类
}

// Subcategory 表示二级分类，必须挂在某个 Category 下。
//
// 三个社交链接均为可选。
type Subcategory struct {
	ID        uint      `gorm:"primaryKey"` // 子分类唯一标识
	CreatedAt time.Time // 创建时间

	CategoryID uint     `gorm:"not null;index"`        // 所属分类 ID
	Category   Category `gorm:"foreignKey:CategoryID"` // 所属分类

	Title string `gorm:"not null"` // 标题
	Image string `gorm:"not null"` // 配图 URL

	Twitter string // Twitter 链接
	Discord string // Discord 链接
	WebLink string // 官网链接
}
