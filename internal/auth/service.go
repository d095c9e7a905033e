// Package auth 实现凭证管理：注册、登录、会话令牌与密码重置的全部状态迁移。
//
// 所有触碰用户认证密钥的写路径都集中在这里，HTTP 层只做参数绑定与状态码映射。
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"curiohub/internal/model"
	"curiohub/internal/pkg/metrics"
	"curiohub/internal/pkg/notify"
	"curiohub/internal/store"

	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost       = 10               // 与原系统一致的成本因子
	resetTokenTTL    = 10 * time.Minute // 重置密钥有效期
	resetSecretBytes = 20               // 重置密钥熵（字节）
	minPasswordLen   = 6
)

// 与原系统相同的邮箱校验模式。
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// UserStore 是凭证管理依赖的存储契约。
//
// ConsumeResetToken 必须是单行原子条件更新：哈希匹配且未过期才命中，
// 命中的同时写入新密码哈希并清空重置状态；未命中返回 store.ErrNotFound。
type UserStore interface {
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	SetResetToken(ctx context.Context, userID uint, tokenHash string, expiry time.Time) error
	ClearResetToken(ctx context.Context, userID uint) error
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, newPasswordHash string) error
}

// Session 是注册/登录成功后的返回值。
type Session struct {
	User  *model.User
	Token string
}

// Service 提供凭证管理。
type Service struct {
	users        UserStore
	mailer       notify.Notifier
	jwtSecret    []byte
	resetBaseURL string // 重置链接前缀，如 https://example.com
	logger       *slog.Logger
	now          func() time.Time
}

// NewService 创建凭证管理服务。mailer 以接口注入，测试时可替换为假实现。
func NewService(users UserStore, mailer notify.Notifier, jwtSecret string, resetBaseURL string, logger *slog.Logger) *Service {
	return &Service{
		users:        users,
		mailer:       mailer,
		jwtSecret:    []byte(jwtSecret),
		resetBaseURL: strings.TrimRight(resetBaseURL, "/"),
		logger:       logger,
		now:          time.Now,
	}
}

// Register 创建新用户并签发会话令牌。
//
// 明文密码只在内存里经过 bcrypt，既不持久化也不写日志。
func (s *Service) Register(ctx context.Context, fullName, email, password string) (*Session, error) {
	fullName = strings.TrimSpace(fullName)
	email = normalizeEmail(email)

	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	if _, err := s.users.FindUserByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("query user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// 并发注册同一邮箱时由唯一索引兜底
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := SignSessionToken(s.jwtSecret, user.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	metrics.UserRegisteredTotal.Inc()
	s.logger.Info("user registered", slog.String("email", email))
	return &Session{User: user, Token: token}, nil
}

// Login 校验邮箱与密码并签发会话令牌。
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.LoginFailureTotal.Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginFailureTotal.Inc()
		return nil, ErrInvalidCredentials
	}

	token, err := SignSessionToken(s.jwtSecret, user.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("email", email))
	return &Session{User: user, Token: token}, nil
}

// RequestPasswordReset 生成一次性重置密钥并通过邮件下发。
//
// 服务端只保存密钥的 SHA-256 哈希；邮件投递失败时回滚重置状态，
// 不留下一个永远无法使用的孤儿令牌。
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("query user: %w", err)
	}

	secret, err := generateResetSecret()
	if err != nil {
		return fmt.Errorf("generate reset secret: %w", err)
	}
	expiry := s.now().Add(resetTokenTTL)

	if err := s.users.SetResetToken(ctx, user.ID, hashResetSecret(secret), expiry); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}

	resetURL := s.resetBaseURL + "/api/auth/reset-password/" + secret
	if err := s.mailer.SendPasswordReset(ctx, user.Email, resetURL); err != nil {
		s.logger.Warn("send reset email failed", slog.String("email", email), slog.String("error", err.Error()))
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.logger.Error("rollback reset token failed", slog.String("email", email), slog.String("error", clearErr.Error()))
		}
		return ErrNotificationFailed
	}

	metrics.PasswordResetRequestedTotal.Inc()
	s.logger.Info("password reset requested", slog.String("email", email))
	return nil
}

// ResetPassword 用原始重置密钥设置新密码。
//
// 查找与消费在一条条件更新里完成：哈希匹配且未过期才生效，
// 成功的同时清空重置状态，密钥不可重放。
func (s *Service) ResetPassword(ctx context.Context, rawSecret, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.ConsumeResetToken(ctx, hashResetSecret(rawSecret), s.now(), string(hash)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	metrics.PasswordResetCompletedTotal.Inc()
	s.logger.Info("password reset completed")
	return nil
}

// VerifySessionToken 校验会话令牌并返回用户 ID。
func (s *Service) VerifySessionToken(token string) (uint, error) {
	return VerifySessionToken(s.jwtSecret, token)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func generateResetSecret() (string, error) {
	buf := make([]byte, resetSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
