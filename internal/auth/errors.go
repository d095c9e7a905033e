package auth

import "errors"

// 凭证操作的错误分类。HTTP 层只依赖这些哨兵错误做状态码映射。
var (
	// ErrValidation 输入不合法（姓名为空、邮箱格式错误、密码过短）。
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateEmail 邮箱已被注册（不区分大小写）。
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidCredentials 登录失败。邮箱不存在与密码错误返回同一个错误，
	// 不向调用方泄露是哪个字段不对。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound 请求重置密码的邮箱不存在。
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidOrExpiredToken 重置密钥无效或已过期，两种情况不做区分。
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	// ErrNotificationFailed 重置邮件投递失败，重置状态已回滚。
	ErrNotificationFailed = errors.New("notification dispatch failed")
)
