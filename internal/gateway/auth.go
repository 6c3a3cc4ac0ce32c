package gateway

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/censudex/gateway/pkg/upstream"
)

// authClient は認証局（Auth Service）への中継呼び出しをまとめたクライアント。
// Gatewayはトークンを解読せず、検証はすべて認証局に委譲する。
type authClient struct {
	// client は認証局へのHTTPクライアント。
	client *upstream.Client
}

// newAuthClient は認証局への中継クライアントを生成する。
func newAuthClient(baseURL string) *authClient {
	return &authClient{client: upstream.New("auth", baseURL)}
}

// ValidateToken は認証局のトークン検証エンドポイントを呼び出す。
// Authorizationヘッダーは受け取った値をそのまま転送する。
// middleware.TokenValidatorを実装する。
func (a *authClient) ValidateToken(ctx context.Context, authorizationHeader string) (*upstream.Response, error) {
	header := http.Header{}
	header.Set("Authorization", authorizationHeader)
	return a.client.Get(ctx, "/auth/validate-token", header)
}

// handleLogin はログインリクエストを認証局に中継するハンドラーを返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディの読み取りに失敗しました"})
			return
		}

		header := http.Header{}
		header.Set("Content-Type", "application/json")
		resp, err := s.auth.client.Do(c.Request.Context(), http.MethodPost, "/auth/login", header, bytes.NewReader(body))
		if err != nil {
			failUnavailable(c, s.auth.client.Name(), err)
			return
		}
		relayAuthResponse(c, resp)
	}
}

// handleLogout はログアウトリクエストを認証局に中継するハンドラーを返す。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := s.auth.client.Do(c.Request.Context(), http.MethodPost, "/auth/logout", authorizationHeaderOf(c), nil)
		if err != nil {
			failUnavailable(c, s.auth.client.Name(), err)
			return
		}
		relayAuthResponse(c, resp)
	}
}

// handleValidateToken はトークン検証を認証局に中継するハンドラーを返す。
// 検証結果（クレーム）をそのまま呼び出し元に返す。
func (s *Server) handleValidateToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := s.auth.client.Get(c.Request.Context(), "/auth/validate-token", authorizationHeaderOf(c))
		if err != nil {
			failUnavailable(c, s.auth.client.Name(), err)
			return
		}
		relayAuthResponse(c, resp)
	}
}

// authorizationHeaderOf は転送用のAuthorizationヘッダーを組み立てる。
func authorizationHeaderOf(c *gin.Context) http.Header {
	header := http.Header{}
	if auth := c.GetHeader("Authorization"); auth != "" {
		header.Set("Authorization", auth)
	}
	return header
}

// relayAuthResponse は認証局のレスポンスを呼び出し元に中継する。
// 認証局の判定は加工せずそのまま返す。
func relayAuthResponse(c *gin.Context, resp *upstream.Response) {
	if !resp.IsSuccess() {
		relayUpstreamError(c, resp)
		return
	}
	relayUpstream(c, resp)
}
