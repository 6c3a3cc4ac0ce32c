package policy

// Descriptor は1つのルートに対する認可ポリシーを表す。
// 起動時に定義され、以降は変更されない。
type Descriptor struct {
	// Method はHTTPメソッド（例: "GET"）。
	Method string
	// Path はGinのルートパターン（例: "/clients/:id"）。
	Path string
	// RequiresIdentity は認証済みアイデンティティが必須かどうか。
	RequiresIdentity bool
	// AllowAnonymous は匿名アクセスの明示的な許可。
	// trueの場合、RequiresIdentityの値に関わらず認証をスキップする。
	AllowAnonymous bool
}

// Registry はルートごとの認可ポリシーを保持する読み取り専用テーブル。
// プロセス起動時に一度だけ構築し、以降は複数のリクエストから
// 並行に参照しても安全。
type Registry struct {
	// entries は "メソッド パターン" をキーとするポリシーの索引。
	entries map[string]Descriptor
}

// NewRegistry はDescriptorの一覧からRegistryを構築する。
// 同じメソッドとパターンの組が複数ある場合は後勝ちとなる。
func NewRegistry(descriptors []Descriptor) *Registry {
	entries := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		entries[registryKey(d.Method, d.Path)] = d
	}
	return &Registry{entries: entries}
}

// Lookup はメソッドとルートパターンに対応するDescriptorを返す。
// 登録されていないルートはok=falseとなり、呼び出し側は認証不要として扱う。
func (r *Registry) Lookup(method, path string) (Descriptor, bool) {
	d, ok := r.entries[registryKey(method, path)]
	return d, ok
}

// registryKey はRegistryの内部キーを生成する。
func registryKey(method, path string) string {
	return method + " " + path
}
