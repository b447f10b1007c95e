package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// HeaderRequestID 请求ID的传递头。店面前端或网关可以预先设置，便于端到端追踪。
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLength 入站请求ID的长度上限，超长的视为无效
const maxRequestIDLength = 64

// RequestID 为每个请求建立关联标识：
// 入站头中存在有效ID则沿用，否则生成UUID；
// ID同时写入响应头与请求上下文，供访问日志和响应封装引用。
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get(HeaderRequestID))
		if rid == "" || len(rid) > maxRequestIDLength {
			rid = uuid.New().String()
		}
		w.Header().Set(HeaderRequestID, rid)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), rid)))
	})
}
