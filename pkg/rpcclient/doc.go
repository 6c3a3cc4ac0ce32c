// Package rpcclient はRPCスタイルのバックエンドサービスを呼び出すクライアントを提供する。
//
// クライアント台帳サービスと注文サービスはJSONボディのPOSTで呼び出し、
// 失敗はgRPC互換のステータスコード（google.golang.org/grpc/codes）として
// 受け取る。リモートの失敗コードからエッジのHTTPステータスへの変換表も
// このパッケージが持ち、全ルートで共通に使用する。
package rpcclient
