// Package resp 提供统一的HTTP JSON响应封装：业务码、消息、数据与请求ID。
package resp

import (
	"encoding/json"
	"net/http"
)

// Code 业务响应码
type Code int

const (
	CodeOK            Code = 0    // 成功
	CodeInvalidParam  Code = 1001 // 参数错误
	CodeUnauthorized  Code = 1002 // 未认证或令牌无效
	CodeNotFound      Code = 1003 // 资源不存在
	CodeUpstreamError Code = 2001 // 远端服务调用失败
	CodeInternalError Code = 5000 // 内部错误
	CodeTimeout       Code = 5001 // 请求超时
	CodeRateLimited   Code = 5002 // 触发限流
)

// Body 统一响应体结构
type Body struct {
	Code      Code        `json:"code"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// HTTPStatusFromCode 将业务码映射为HTTP状态码
func HTTPStatusFromCode(code Code) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUpstreamError:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusServiceUnavailable
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// OK 写入成功响应
func OK(w http.ResponseWriter, data interface{}, requestID, traceID string) {
	write(w, http.StatusOK, &Body{
		Code:      CodeOK,
		Data:      data,
		RequestID: requestID,
		TraceID:   traceID,
	})
}

// Error 写入错误响应
func Error(w http.ResponseWriter, status int, code Code, message, requestID, traceID string) {
	write(w, status, &Body{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		TraceID:   traceID,
	})
}

// write 序列化并写出响应体
func write(w http.ResponseWriter, status int, body *Body) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// 编码失败时响应头已写出，只能放弃
	_ = json.NewEncoder(w).Encode(body)
}
