// Package service 提供认证业务逻辑：登录、注册与资料获取均代理到远端商城。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/domain"
	"github.com/egooptika/storefront/internal/wp"
)

// 认证业务错误
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)

// AuthService 定义认证服务接口。
// 凭据校验与用户存储完全由远端商城负责；登录成功后
// 签发本地会话令牌，其中封装远端JWT供后续接口透传。
type AuthService interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.LoginResponse, error)
	Profile(ctx context.Context, remoteToken string) (*domain.User, error)
}

// authService 是AuthService接口的实现
type authService struct {
	wpClient   wp.Client
	jwtService JWTService
	logger     *zap.Logger
}

// NewAuthService 创建认证服务实例
func NewAuthService(wpClient wp.Client, jwtService JWTService, logger *zap.Logger) AuthService {
	return &authService{
		wpClient:   wpClient,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login 用户登录
// 业务规则：
// 1. 凭据由远端商城验证，本服务不比对密码
// 2. 换取远端JWT后立即拉取用户资料
// 3. 签发封装远端JWT的本地会话令牌
func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)

	remoteToken, err := s.wpClient.IssueToken(ctx, username, req.Password)
	if err != nil {
		if errors.Is(err, wp.ErrBadCredentials) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to issue remote token", zap.Error(err))
		return nil, fmt.Errorf("issue remote token: %w", err)
	}

	user, err := s.wpClient.CurrentUser(ctx, remoteToken)
	if err != nil {
		s.logger.Error("failed to fetch user profile", zap.Error(err))
		return nil, fmt.Errorf("fetch user profile: %w", err)
	}

	sessionToken, err := s.jwtService.Generate(user, remoteToken)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	s.logger.Info("user logged in",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return &domain.LoginResponse{Token: sessionToken, User: user}, nil
}

// Register 注册新用户并自动登录
func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if _, err := s.wpClient.Register(ctx, req); err != nil {
		if errors.Is(err, wp.ErrUserExists) {
			return nil, ErrUserExists
		}
		s.logger.Error("failed to register user", zap.Error(err))
		return nil, fmt.Errorf("register user: %w", err)
	}

	// 注册成功后用新凭据正常走一遍登录流程
	return s.Login(ctx, &domain.LoginRequest{Username: req.Username, Password: req.Password})
}

// Profile 用会话中携带的远端JWT拉取最新用户资料
func (s *authService) Profile(ctx context.Context, remoteToken string) (*domain.User, error) {
	user, err := s.wpClient.CurrentUser(ctx, remoteToken)
	if err != nil {
		s.logger.Error("failed to fetch user profile", zap.Error(err))
		return nil, fmt.Errorf("fetch user profile: %w", err)
	}
	return user, nil
}
