// Package gateway はAPI Gatewayサービスの内部実装を提供する。
//
// 認証局・クライアント台帳・在庫・商品カタログ・注文の各バックエンドを
// 単一のHTTP APIとして公開する。トークン検証は認証局への委譲で行い、
// 在庫と商品カタログは商品IDで結合したビューとして返す。
// Gatewayはリクエスト間で状態を持たない。
package gateway
