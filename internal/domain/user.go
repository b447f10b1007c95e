// Package domain 定义用户会话相关的领域模型。
package domain

// User 表示经远端认证服务校验后的店面用户。
// 用户数据由远端服务持有，本服务只保留会话期间需要的身份信息。
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// LoginRequest 表示用户登录请求
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest 表示用户注册请求
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse 表示登录成功后的响应：本地会话令牌与用户信息。
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
