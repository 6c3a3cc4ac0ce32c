// Package upstream はバックエンドサービスへのHTTP呼び出しを行うクライアントを提供する。
//
// Gatewayが認証局・在庫サービス・商品サービスを呼び出す際に使用する。
// トランスポートが成立した呼び出しはステータスコードに関わらずResponseとして返し、
// エッジのHTTPステータスへの変換は呼び出し側に委ねる。
// リトライ・キャッシュ・呼び出しごとのタイムアウト制御は行わない
// （トランスポートの既定タイムアウトのみ）。
package upstream
