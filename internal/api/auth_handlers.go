package api

import (
	"errors"
	"log/slog"
	"net/http"

	"curiohub/internal/auth"
	"curiohub/internal/model"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type userPayload struct {
	ID       uint   `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type sessionResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    userPayload `json:"user"`
}

func toSessionResponse(session *auth.Session) sessionResponse {
	return sessionResponse{
		Success: true,
		Token:   session.Token,
		User:    toUserPayload(session.User),
	}
}

func toUserPayload(user *model.User) userPayload {
	return userPayload{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
	}
}

// handleRegister 注册新用户并返回会话令牌。
//
// POST /api/auth/register
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := s.credentials.Register(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateEmail):
			fail(c, http.StatusBadRequest, "User already exists")
		case errors.Is(err, auth.ErrValidation):
			fail(c, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("register failed", slog.String("error", err.Error()))
			fail(c, http.StatusInternalServerError, "create user failed")
		}
		return
	}

	c.JSON(http.StatusCreated, toSessionResponse(session))
}

// handleLogin 校验凭证并返回会话令牌。
//
// POST /api/auth/login
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := s.credentials.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.Error("login failed", slog.String("error", err.Error()))
		fail(c, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session))
}

// handleForgotPassword 发起密码重置。
//
// POST /api/auth/forgot-password
func (s *Server) handleForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := s.resetLimiter.Allow(c.Request.Context())
	if err != nil {
		// 限流器故障时放行，业务可用优先
		s.logger.Warn("reset limiter check failed", slog.String("error", err.Error()))
	} else if !ok {
		fail(c, http.StatusTooManyRequests, "Too many reset requests, try again later")
		return
	}

	if err := s.credentials.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			fail(c, http.StatusNotFound, "User not found")
		case errors.Is(err, auth.ErrNotificationFailed):
			fail(c, http.StatusInternalServerError, "Email could not be sent")
		default:
			s.logger.Error("password reset request failed", slog.String("error", err.Error()))
			fail(c, http.StatusInternalServerError, "password reset request failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset email sent"})
}

// handleResetPassword 用重置密钥设置新密码。
//
// PUT /api/auth/reset-password/:resetToken
func (s *Server) handleResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	err := s.credentials.ResetPassword(c.Request.Context(), c.Param("resetToken"), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidOrExpiredToken):
			fail(c, http.StatusBadRequest, "Invalid or expired reset token")
		case errors.Is(err, auth.ErrValidation):
			fail(c, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("password reset failed", slog.String("error", err.Error()))
			fail(c, http.StatusInternalServerError, "password reset failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successful"})
}
