// Package middleware はGatewayのGinベースHTTP APIで使用する共通ミドルウェアを提供する。
//
// 認証局へのトークン検証委譲（DelegatedAuth）、リクエストID付与、
// パニックリカバリ、CORS設定を含む。トークンの暗号学的検証は
// Gateway内では行わず、すべて認証局に委譲する。
package middleware
