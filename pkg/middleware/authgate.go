package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/censudex/gateway/pkg/policy"
	"github.com/censudex/gateway/pkg/upstream"
)

// ProvenanceDelegatedProxy はGatewayが認証局への委譲で合成したPrincipalの出自を表す。
const ProvenanceDelegatedProxy = "api_gateway_proxy"

// roleClaimKey は認証局の成功ペイロードに含まれるロールクレームの正規キー。
const roleClaimKey = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"

// roleClaimKeyShort は正規キーが無い場合にフォールバックする短縮ロールキー。
const roleClaimKeyShort = "role"

// subClaimKey はサブジェクト（ユーザー識別子）のクレームキー。
const subClaimKey = "sub"

// contextKeyPrincipal はGinコンテキストにPrincipalを格納するためのキー。
const contextKeyPrincipal = "principal"

// Principal は認証済み呼び出し元のGateway内部での表現。
// 1リクエストの間だけ存在し、永続化されない。
type Principal struct {
	// Subject は呼び出し元の識別子。クレームに含まれない場合は空。
	Subject string
	// Roles は呼び出し元のロール一覧。クレームに含まれない場合は空。
	Roles []string
	// Provenance はPrincipalの出自。
	Provenance string
}

// HasRole はPrincipalが指定ロールを持つかどうかを返す。
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenValidator は認証局へのトークン検証呼び出しを抽象化する。
// Authorizationヘッダーはバイト列のまま転送し、Gateway側で解読しない。
type TokenValidator interface {
	ValidateToken(ctx context.Context, authorizationHeader string) (*upstream.Response, error)
}

// DelegatedAuth は認可ポリシーに基づきトークン検証を認証局へ委譲するGinミドルウェアを返す。
// 保護されたルートでは、ルート固有の上流呼び出しが行われる前に必ず
// 検証が完了する（成功または失敗で確定する）。
//
//   - ポリシー未登録・AllowAnonymous・RequiresIdentity=false のルートは
//     認証局に接触せずそのまま通す
//   - Authorizationヘッダーが無い場合は認証局に接触せず401を返す
//   - 認証局が4xx/5xxを返した場合はそのステータスとボディを加工せず返す
//   - 認証局への接続自体に失敗した場合は503を返す
//   - 成功時はクレームからPrincipalを合成してコンテキストに添付する
func DelegatedAuth(validator TokenValidator, registry *policy.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		descriptor, ok := registry.Lookup(c.Request.Method, c.FullPath())
		if !ok || descriptor.AllowAnonymous || !descriptor.RequiresIdentity {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Printf("認可拒否: Authorizationヘッダーなし: %s %s", c.Request.Method, c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorizationヘッダーが必要です",
			})
			return
		}

		resp, err := validator.ValidateToken(c.Request.Context(), authHeader)
		if err != nil {
			log.Printf("トークン検証呼び出しに失敗: %v", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "認証サービスに接続できません",
			})
			return
		}

		if resp.StatusCode >= http.StatusBadRequest {
			// 認証局の判断をそのまま返す。理由の再解釈はしない。
			log.Printf("トークン検証が認証局に拒否された: status=%d", resp.StatusCode)
			c.Abort()
			if len(resp.Body) == 0 {
				c.JSON(resp.StatusCode, gin.H{"error": http.StatusText(resp.StatusCode)})
				return
			}
			contentType := resp.ContentType
			if contentType == "" {
				contentType = "application/json"
			}
			c.Data(resp.StatusCode, contentType, resp.Body)
			return
		}

		c.Set(contextKeyPrincipal, parsePrincipal(resp.Body))
		c.Next()
	}
}

// parsePrincipal は認証局の成功ペイロードからPrincipalを合成する。
// クレームの解析はベストエフォートで行う。トークンの有効性自体は
// 認証局が確認済みのため、ペイロードを解析できない場合でもリクエストは
// 失敗させず、クレームなしの認証済みPrincipalに落とす。
func parsePrincipal(body []byte) Principal {
	p := Principal{Provenance: ProvenanceDelegatedProxy}

	var claims map[string]json.RawMessage
	if err := json.Unmarshal(body, &claims); err != nil {
		log.Printf("クレームの解析に失敗。クレームなしのPrincipalを使用する: %v", err)
		return p
	}

	if raw, ok := claims[subClaimKey]; ok {
		if text, ok := claimText(raw); ok {
			p.Subject = text
		}
	}

	// 正規のロールクレームキーを優先し、値が取れない場合のみ短縮キーを参照する。
	// nullは値なしとして扱うため、正規キーがnullでも短縮キーへフォールバックする。
	for _, key := range []string{roleClaimKey, roleClaimKeyShort} {
		raw, ok := claims[key]
		if !ok {
			continue
		}
		if text, ok := claimText(raw); ok {
			p.Roles = append(p.Roles, text)
			break
		}
	}

	return p
}

// claimText はクレーム値をテキスト形式に変換する。
// 文字列以外のスカラー値（数値・真偽値）はJSON表現のまま使用する。
// nullと空文字列は値なしとして扱う。
func claimText(raw json.RawMessage) (string, bool) {
	if string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}
	return string(raw), true
}

// GetPrincipal はGinコンテキストからPrincipalを取得する。
// DelegatedAuthミドルウェアが事前に適用されていて、かつルートが
// 認証必須の場合にのみ取得できる。
func GetPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(contextKeyPrincipal)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}
