package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"
)

// Client は上流サービスへのHTTP呼び出しを行うクライアント。
// コネクションプールは内部のhttp.Clientが保持し、複数のリクエスト
// タスクから並行に使用しても安全。
type Client struct {
	// name はログとエラーメッセージで使用する上流サービス名。
	name string
	// baseURL は接続先サービスのベースURL。
	baseURL string
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
}

// New は新しい上流サービス用HTTPクライアントを生成する。
// nameには上流サービス名（例: "inventory"）、baseURLには接続先の
// ベースURL（例: "http://inventory:5233"）を指定する。
func New(name, baseURL string) *Client {
	return &Client{
		name:    name,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name は上流サービス名を返す。
func (c *Client) Name() string {
	return c.name
}

// Response は上流から受信したHTTPレスポンス。
// 4xx/5xxであってもトランスポートが成立していればResponseとして表現する。
type Response struct {
	// StatusCode は上流が返したHTTPステータスコード。
	StatusCode int
	// ContentType はContent-Typeヘッダーの値。
	ContentType string
	// Body はレスポンスボディ全体。
	Body []byte
}

// IsSuccess はステータスコードが2xxかどうかを返す。
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsJSON はレスポンスのメディアタイプがapplication/jsonかどうかを返す。
// charset等のパラメータは無視する。
func (r *Response) IsJSON() bool {
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

// DecodeJSON はレスポンスボディをvにデシリアライズする。
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
	}
	return nil
}

// Do は上流サービスにHTTPリクエストを送信する。
// headerに指定したヘッダーはそのまま転送される。エラーを返すのは
// トランスポートレベルの失敗のみで、HTTPエラーステータスは
// 正常なResponseとして返す。
func (c *Client) Do(ctx context.Context, method, path string, header http.Header, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%sへのリクエスト作成に失敗: %w", c.name, err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%sへのリクエスト送信に失敗: %w", c.name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%sのレスポンス読み取りに失敗: %w", c.name, err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        respBody,
	}, nil
}

// Get は指定パスにGETリクエストを送信する。
func (c *Client) Get(ctx context.Context, path string, header http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, header, nil)
}

// PostJSON は指定パスにJSONボディでPOSTリクエストを送信する。
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Response, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return c.Do(ctx, http.MethodPost, path, header, bytes.NewReader(jsonBody))
}
