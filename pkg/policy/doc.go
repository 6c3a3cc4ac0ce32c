// Package policy はルートごとの認可ポリシーを提供する。
//
// 各ルートが認証済みアイデンティティを必要とするかどうかを
// 起動時に静的なテーブルとして宣言し、リクエストごとに参照する。
// テーブルは構築後に変更されないため、並行アクセスに対して安全。
package policy
