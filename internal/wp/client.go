// Package wp 实现远端商城WordPress接口的客户端：认证、用户与订单。
// 本服务不保存任何凭据与订单数据，这些接口是唯一的事实来源。
package wp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/egooptika/storefront/internal/config"
	"github.com/egooptika/storefront/internal/domain"
)

// 远端接口错误定义
var (
	// ErrBadCredentials 表示远端拒绝了用户名密码
	ErrBadCredentials = errors.New("bad credentials")
	// ErrUserExists 表示注册的用户名或邮箱已被占用
	ErrUserExists = errors.New("user already exists")
)

// UpstreamError 表示远端接口返回的非预期状态
type UpstreamError struct {
	Endpoint string
	Status   int
	Code     string
	Message  string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("wp %s: status %d code=%s: %s", e.Endpoint, e.Status, e.Code, e.Message)
}

// Client 定义远端商城接口
type Client interface {
	// IssueToken 用用户名密码换取远端JWT
	IssueToken(ctx context.Context, username, password string) (string, error)
	// CurrentUser 用远端JWT获取当前用户资料
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	// Register 注册新用户
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error)
	// CreateOrder 创建订单，返回远端订单号
	CreateOrder(ctx context.Context, token string, req *domain.CreateOrderRequest) (int64, error)
	// UserOrders 按登录名与邮箱查询用户历史订单
	UserOrders(ctx context.Context, token, userLogin, email string) ([]domain.Order, error)
}

// client 是Client接口的HTTP实现
type client struct {
	cfg        config.WPConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient 创建远端商城客户端
func NewClient(cfg config.WPConfig, logger *zap.Logger) Client {
	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// tokenResponse 是 jwt-auth 令牌接口的应答
type tokenResponse struct {
	Token string `json:"token"`
}

// wpError 是WordPress REST错误体的通用形态
type wpError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// wpUser 是 /wp/v2/users 系列接口的用户形态
type wpUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// createOrderResponse 是订单创建接口的应答
type createOrderResponse struct {
	OrderID int64 `json:"order_id"`
}

// IssueToken 用用户名密码换取远端JWT
func (c *client) IssueToken(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}

	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/wp-json/jwt-auth/v1/token", "", body, &out); err != nil {
		var ue *UpstreamError
		// jwt-auth对凭据错误返回403
		if errors.As(err, &ue) && (ue.Status == http.StatusForbidden || ue.Status == http.StatusUnauthorized) {
			return "", ErrBadCredentials
		}
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("wp token endpoint returned empty token")
	}
	return out.Token, nil
}

// CurrentUser 获取远端JWT对应的用户资料
func (c *client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	var out wpUser
	if err := c.do(ctx, http.MethodGet, "/wp-json/wp/v2/users/me?context=edit", token, nil, &out); err != nil {
		return nil, err
	}
	return toDomainUser(&out), nil
}

// Register 注册新用户
func (c *client) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	body := map[string]string{
		"username": req.Username,
		"email":    req.Email,
		"password": req.Password,
	}

	var out wpUser
	if err := c.do(ctx, http.MethodPost, "/wp-json/wp/v2/users", "", body, &out); err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) && (ue.Code == "existing_user_login" || ue.Code == "existing_user_email") {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return toDomainUser(&out), nil
}

// CreateOrder 创建订单，返回远端订单号
func (c *client) CreateOrder(ctx context.Context, token string, req *domain.CreateOrderRequest) (int64, error) {
	var out createOrderResponse
	if err := c.do(ctx, http.MethodPost, "/wp-json/custom/v1/create-order", token, req, &out); err != nil {
		return 0, err
	}
	if out.OrderID == 0 {
		return 0, fmt.Errorf("wp create-order returned no order id")
	}
	return out.OrderID, nil
}

// UserOrders 按登录名与邮箱查询用户历史订单
func (c *client) UserOrders(ctx context.Context, token, userLogin, email string) ([]domain.Order, error) {
	body := map[string]string{"user_login": userLogin, "email": email}

	var out []domain.Order
	if err := c.do(ctx, http.MethodPost, "/wp-json/custom/v1/user-orders", token, body, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Order{}
	}
	return out, nil
}

// do 执行一次远端调用：编码请求体、附加令牌、解码应答或错误体。
func (c *client) do(ctx context.Context, method, path, token string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wp %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var we wpError
		_ = json.NewDecoder(io.LimitReader(res.Body, 4096)).Decode(&we)
		c.logger.Warn("wp request failed",
			zap.String("endpoint", path),
			zap.Int("status", res.StatusCode),
			zap.String("code", we.Code),
		)
		return &UpstreamError{Endpoint: path, Status: res.StatusCode, Code: we.Code, Message: we.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode wp %s response: %w", path, err)
	}
	return nil
}

// toDomainUser 把远端用户形态转换为领域用户。
// 部分WordPress部署在非edit上下文中不回传username，此时退回slug。
func toDomainUser(u *wpUser) *domain.User {
	username := u.Username
	if username == "" {
		username = u.Slug
	}
	return &domain.User{
		ID:       u.ID,
		Username: username,
		Email:    u.Email,
		Name:     u.Name,
	}
}
