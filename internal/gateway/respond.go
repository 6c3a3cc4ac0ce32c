package gateway

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/censudex/gateway/pkg/middleware"
	"github.com/censudex/gateway/pkg/upstream"
)

// relayUpstream は上流レスポンスのステータスとボディをそのまま返す。
func relayUpstream(c *gin.Context, resp *upstream.Response) {
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, resp.Body)
}

// relayUpstreamError は上流のエラーレスポンスをそのまま返す。
// ボディが空の場合のみステータステキストから汎用メッセージを合成する。
func relayUpstreamError(c *gin.Context, resp *upstream.Response) {
	if len(resp.Body) == 0 {
		c.JSON(resp.StatusCode, gin.H{"error": http.StatusText(resp.StatusCode)})
		return
	}
	relayUpstream(c, resp)
}

// failUnavailable は上流への接続失敗を503として返す。詳細はログにのみ残す。
func failUnavailable(c *gin.Context, serviceName string, err error) {
	log.Printf("上流呼び出しに失敗: request_id=%s, service=%s, error=%v",
		middleware.GetRequestID(c), serviceName, err)
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": serviceName + "サービスに接続できません"})
}

// failContract は上流のJSON契約違反を500として返す。
func failContract(c *gin.Context, serviceName string) {
	log.Printf("上流がJSONを返さなかった: request_id=%s, service=%s", middleware.GetRequestID(c), serviceName)
	c.JSON(http.StatusInternalServerError, gin.H{"error": serviceName + "サービスが不正なレスポンスを返しました"})
}

// rawQuerySuffix は上流転送用のクエリ文字列（"?"付き）を返す。
func rawQuerySuffix(c *gin.Context) string {
	if c.Request.URL.RawQuery != "" {
		return "?" + c.Request.URL.RawQuery
	}
	return ""
}

// queryAny は候補のクエリパラメータ名のうち最初に値が設定されているものを返す。
func queryAny(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := c.Query(name); v != "" {
			return v
		}
	}
	return ""
}
