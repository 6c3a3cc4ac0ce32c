package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Client はRPCスタイルのバックエンドを呼び出すクライアント。
// リトライ・キャッシュは行わず、タイムアウトはトランスポートの既定値のみ。
// 複数のリクエストタスクから並行に使用しても安全。
type Client struct {
	// name はログとエラーメッセージで使用するサービス名。
	name string
	// baseURL は接続先サービスのベースURL。
	baseURL string
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
}

// New は新しいRPCクライアントを生成する。
// nameにはサービス名（例: "orders"）、baseURLには接続先のベースURLを指定する。
func New(name, baseURL string) *Client {
	return &Client{
		name:    name,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// errorEnvelope はRPCバックエンドが返すエラーレスポンスの形式。
// codeはgRPCの正準コード名（例: "NOT_FOUND"）。
type errorEnvelope struct {
	// Code はリモート呼び出しの失敗コード。
	Code codes.Code `json:"code"`
	// Message は人間が読める失敗理由。
	Message string `json:"message"`
}

// Invoke は指定メソッドをJSONボディで呼び出し、成功レスポンスをrespに
// デシリアライズする。メソッドは "Service/Method" 形式で指定する。
// 失敗はgoogle.golang.org/grpc/statusのエラーとして返す:
//   - トランスポートレベルの失敗はcodes.Unavailable
//   - エラーエンベロープを解析できない失敗はcodes.Unknown
//   - それ以外はバックエンドが申告したコードとメッセージをそのまま保持する
func (c *Client) Invoke(ctx context.Context, method string, req any, resp any) error {
	var bodyReader io.Reader
	if req != nil {
		jsonBody, err := json.Marshal(req)
		if err != nil {
			return status.Errorf(codes.Internal, "リクエストボディのシリアライズに失敗: %v", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	url := c.baseURL + "/rpc/" + method
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bodyReader)
	if err != nil {
		return status.Errorf(codes.Internal, "%sへのリクエスト作成に失敗: %v", c.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return status.Errorf(codes.Unavailable, "%sに接続できません: %v", c.name, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return status.Errorf(codes.Internal, "%sのレスポンス読み取りに失敗: %v", c.name, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return c.envelopeError(httpResp, respBody)
	}

	if resp != nil {
		if err := json.Unmarshal(respBody, resp); err != nil {
			return status.Errorf(codes.Internal, "%sのレスポンス解析に失敗: %v", c.name, err)
		}
	}
	return nil
}

// envelopeError はエラーレスポンスをstatusエラーに変換する。
// エンベロープを解析できない場合はボディをそのままdetailとして保持し、
// codes.Unknownに落とす。
func (c *Client) envelopeError(httpResp *http.Response, respBody []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Code != codes.OK {
		return status.Error(envelope.Code, envelope.Message)
	}

	detail := strings.TrimSpace(string(respBody))
	if detail == "" {
		detail = httpResp.Status
	}
	return status.Error(codes.Unknown, detail)
}
