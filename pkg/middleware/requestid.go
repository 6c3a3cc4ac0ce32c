package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// headerKeyRequestID はリクエストIDを伝播するHTTPヘッダーキー。
const headerKeyRequestID = "X-Request-ID"

// contextKeyRequestID はGinコンテキストにリクエストIDを格納するためのキー。
const contextKeyRequestID = "request_id"

// RequestID は各リクエストに一意のIDを付与するGinミドルウェアを返す。
// クライアントがX-Request-IDヘッダーを送ってきた場合はその値を引き継ぎ、
// 無ければUUIDを新規に採番する。IDはレスポンスヘッダーにも設定され、
// ログとの突き合わせに使用する。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerKeyRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(contextKeyRequestID, id)
		c.Header(headerKeyRequestID, id)
		c.Next()
	}
}

// GetRequestID はGinコンテキストからリクエストIDを取得する。
// RequestIDミドルウェアが事前に適用されている必要がある。
func GetRequestID(c *gin.Context) string {
	v, _ := c.Get(contextKeyRequestID)
	if id, ok := v.(string); ok {
		return id
	}
	return ""
}
