package rpcclient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// HTTPStatus はリモート呼び出しの失敗コードをエッジのHTTPステータスに変換する。
// マッピングは全ルート・全バックエンド共通で、未知のコードは500に落とす。
func HTTPStatus(code codes.Code) int {
	switch code {
	case codes.NotFound:
		return http.StatusNotFound
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.FailedPrecondition:
		return http.StatusBadRequest
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError はRPC呼び出しのエラーをHTTPレスポンスとして書き込む。
// バックエンドのdetailメッセージは加工せずそのまま返す。
// statusエラー以外は内部エラーとして500の汎用メッセージに落とす。
func WriteError(c *gin.Context, err error) {
	st, ok := status.FromError(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "内部サーバーエラーが発生しました"})
		return
	}

	message := st.Message()
	if message == "" {
		message = st.Code().String()
	}
	c.JSON(HTTPStatus(st.Code()), gin.H{"error": message})
}
