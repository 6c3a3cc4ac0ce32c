package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/censudex/gateway/pkg/rpcclient"
)

// clientsClient はクライアント台帳サービスへのRPC呼び出しをまとめたクライアント。
type clientsClient struct {
	// rpc はクライアント台帳サービスへのRPCクライアント。
	rpc *rpcclient.Client
}

// newClientsClient はクライアント台帳サービスへのRPCクライアントを生成する。
func newClientsClient(baseURL string) *clientsClient {
	return &clientsClient{rpc: rpcclient.New("clients", baseURL)}
}

// clientRecord はクライアント台帳サービスが返すクライアント情報。
type clientRecord struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Username    string `json:"username"`
	BirthDate   string `json:"birth_date"`
	Address     string `json:"address"`
	Status      string `json:"status"`
}

// createClientRequest は新規クライアント登録のリクエストボディ。
type createClientRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	BirthDate   string `json:"birth_date"`
	Address     string `json:"address"`
}

// updateClientRequest はクライアント情報更新のリクエスト。
// 未指定のフィールドは変更されない。
type updateClientRequest struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Password    string `json:"password,omitempty"`
	Address     string `json:"address,omitempty"`
}

// listClientsRequest はクライアント一覧取得のフィルター条件。
type listClientsRequest struct {
	FilterStatus   string `json:"filter_status,omitempty"`
	FilterName     string `json:"filter_name,omitempty"`
	FilterEmail    string `json:"filter_email,omitempty"`
	FilterUsername string `json:"filter_username,omitempty"`
}

// listClientsResponse はクライアント一覧取得のレスポンス。
type listClientsResponse struct {
	Clients []clientRecord `json:"clients"`
}

// clientIDRequest はクライアントIDのみを指定するRPCリクエスト。
type clientIDRequest struct {
	ID string `json:"id"`
}

// deleteClientResponse はクライアント削除のレスポンス。
type deleteClientResponse struct {
	Message string `json:"message"`
}

// handleClientCreate は新規クライアントを登録するハンドラーを返す。
// 新規登録は未認証でも呼び出せる。
func (s *Server) handleClientCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createClientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		var client clientRecord
		if err := s.clients.rpc.Invoke(c.Request.Context(), "Clients/CreateClient", req, &client); err != nil {
			rpcclient.WriteError(c, err)
			return
		}
		c.JSON(http.StatusCreated, client)
	}
}

// handleClientList はクライアント一覧を取得するハンドラーを返す。
// クエリパラメータはRPCのフィルター条件に変換される。
func (s *Server) handleClientList() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := listClientsRequest{
			FilterStatus:   c.Query("filter_status"),
			FilterName:     c.Query("filter_name"),
			FilterEmail:    c.Query("filter_email"),
			FilterUsername: c.Query("filter_username"),
		}

		var resp listClientsResponse
		if err := s.clients.rpc.Invoke(c.Request.Context(), "Clients/GetAllClients", req, &resp); err != nil {
			rpcclient.WriteError(c, err)
			return
		}
		if resp.Clients == nil {
			resp.Clients = []clientRecord{}
		}
		c.JSON(http.StatusOK, resp.Clients)
	}
}

// handleClientGet はクライアント情報を1件取得するハンドラーを返す。
func (s *Server) handleClientGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		var client clientRecord
		req := clientIDRequest{ID: c.Param("id")}
		if err := s.clients.rpc.Invoke(c.Request.Context(), "Clients/GetClientById", req, &client); err != nil {
			rpcclient.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, client)
	}
}

// handleClientUpdate はクライアント情報を更新するハンドラーを返す。
func (s *Server) handleClientUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateClientRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}
		req.ID = c.Param("id")

		var client clientRecord
		if err := s.clients.rpc.Invoke(c.Request.Context(), "Clients/UpdateClient", req, &client); err != nil {
			rpcclient.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, client)
	}
}

// handleClientDelete はクライアントを削除（退会）するハンドラーを返す。
func (s *Server) handleClientDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		var resp deleteClientResponse
		req := clientIDRequest{ID: c.Param("id")}
		if err := s.clients.rpc.Invoke(c.Request.Context(), "Clients/DeleteClient", req, &resp); err != nil {
			rpcclient.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
