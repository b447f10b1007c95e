// Package service 提供会话令牌的生成与验证功能。
package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/config"
	"github.com/egooptika/storefront/internal/domain"
)

// 会话令牌相关错误定义
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenNotReady = errors.New("token used before valid")
)

// SessionClaims 定义会话令牌载荷。
// RemoteToken 是远端商城签发的JWT，调用远端接口时透传，
// 本服务不解析它，只负责在会话有效期内安全携带。
type SessionClaims struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	RemoteToken string `json:"remote_token"`
	jwt.RegisteredClaims
}

// JWTService 定义会话令牌服务接口
type JWTService interface {
	Generate(user *domain.User, remoteToken string) (string, error)
	Validate(tokenString string) (*SessionClaims, error)
}

// jwtService 是JWTService接口的实现
type jwtService struct {
	config *config.Config
	logger *zap.Logger
}

// NewJWTService 创建会话令牌服务实例
func NewJWTService(cfg *config.Config, logger *zap.Logger) JWTService {
	return &jwtService{
		config: cfg,
		logger: logger,
	}
}

// Generate 为已通过远端认证的用户签发会话令牌
func (s *jwtService) Generate(user *domain.User, remoteToken string) (string, error) {
	now := time.Now()

	claims := &SessionClaims{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		RemoteToken: remoteToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.JWT.SessionTTL)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.App.Name,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.JWT.Secret))
	if err != nil {
		s.logger.Error("failed to sign session token", zap.Error(err))
		return "", fmt.Errorf("sign session token: %w", err)
	}

	s.logger.Info("session token generated",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Duration("session_ttl", s.config.JWT.SessionTTL),
	)

	return tokenString, nil
}

// Validate 验证会话令牌并提取载荷
func (s *jwtService) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWT.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotReady
		}
		s.logger.Warn("token validation failed", zap.Error(err))
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// 验证发行者
	if claims.Issuer != s.config.App.Name {
		s.logger.Warn("token issuer mismatch",
			zap.String("expected", s.config.App.Name),
			zap.String("actual", claims.Issuer),
		)
		return nil, ErrInvalidToken
	}

	return claims, nil
}
