package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL 会话令牌有效期。
const SessionTTL = 24 * time.Hour

type sessionClaims struct {
	jwt.RegisteredClaims
}

// SignSessionToken 签发会话令牌（HS256，subject 为用户 ID）。
func SignSessionToken(secret []byte, userID uint, issuedAt time.Time) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(SessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifySessionToken 校验令牌的签名与有效期，返回用户 ID。
// 签名无效、已过期或 subject 非法都返回错误。
func VerifySessionToken(secret []byte, tokenStr string) (uint, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return 0, fmt.Errorf("invalid token")
	}
	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token subject: %w", err)
	}
	return uint(uid), nil
}
