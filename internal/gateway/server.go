package gateway

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/censudex/gateway/pkg/middleware"
	"github.com/censudex/gateway/pkg/policy"
	"github.com/censudex/gateway/pkg/upstream"
)

// Server はAPI Gatewayサービスの HTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// policies はルートごとの認可ポリシーテーブル。
	policies *policy.Registry
	// auth は認証局への中継クライアント。
	auth *authClient
	// clients はクライアント台帳サービスへのRPCクライアント。
	clients *clientsClient
	// orders は注文サービスへのRPCクライアント。
	orders *ordersClient
	// inventory は在庫サービスへのHTTPクライアント。
	inventory *upstream.Client
	// products は商品サービスへのHTTPクライアント。
	products *upstream.Client
}

// serviceURLConfig はバックエンドサービスのURL設定。
type serviceURLConfig struct {
	Auth      string
	Clients   string
	Inventory string
	Products  string
	Orders    string
}

// NewServer は新しいGatewayサーバーを生成する。
func NewServer(port string) (*Server, error) {
	urls := serviceURLConfig{
		Auth:      getEnvOr("AUTH_URL", "http://localhost:8090"),
		Clients:   getEnvOr("CLIENTS_RPC_URL", "http://localhost:5002"),
		Inventory: getEnvOr("INVENTORY_URL", "http://localhost:5233"),
		Products:  getEnvOr("PRODUCTS_URL", "http://localhost:3001"),
		Orders:    getEnvOr("ORDERS_RPC_URL", "http://localhost:5001"),
	}
	for _, u := range []string{urls.Auth, urls.Clients, urls.Inventory, urls.Products, urls.Orders} {
		if _, err := url.Parse(u); err != nil {
			return nil, fmt.Errorf("バックエンドURLが不正 %q: %w", u, err)
		}
	}

	frontendURL := getEnvOr("FRONTEND_URL", "http://localhost:3000")
	return newServer(port, urls, frontendURL), nil
}

// newServer は依存を明示的に受け取ってGatewayサーバーを構築する。
func newServer(port string, urls serviceURLConfig, frontendURL string) *Server {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS([]string{frontendURL}))

	s := &Server{
		router:    router,
		port:      port,
		policies:  routePolicies(),
		auth:      newAuthClient(urls.Auth),
		clients:   newClientsClient(urls.Clients),
		orders:    newOrdersClient(urls.Orders),
		inventory: upstream.New("inventory", urls.Inventory),
		products:  upstream.New("products", urls.Products),
	}

	// 認可の判定はルート固有の上流呼び出しより前に必ず完了させる
	router.Use(middleware.DelegatedAuth(s.auth, s.policies))
	s.setupRoutes()

	return s
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// routePolicies はルートごとの認可ポリシーを定義する。
// ここに無いルートは認証不要として扱われる。AllowAnonymousは
// RequiresIdentityより優先される。
func routePolicies() *policy.Registry {
	return policy.NewRegistry([]policy.Descriptor{
		// クライアント台帳は原則認証必須。新規登録のみ匿名を明示的に許可する。
		{Method: http.MethodPost, Path: "/clients/create", RequiresIdentity: true, AllowAnonymous: true},
		{Method: http.MethodGet, Path: "/clients", RequiresIdentity: true},
		{Method: http.MethodGet, Path: "/clients/:id", RequiresIdentity: true},
		{Method: http.MethodPatch, Path: "/clients/:id", RequiresIdentity: true},
		{Method: http.MethodDelete, Path: "/clients/:id", RequiresIdentity: true},

		// 商品カタログの参照は公開、変更は認証必須
		{Method: http.MethodPost, Path: "/products", RequiresIdentity: true},
		{Method: http.MethodPatch, Path: "/products/:id", RequiresIdentity: true},
		{Method: http.MethodDelete, Path: "/products/:id", RequiresIdentity: true},

		// 結合ビューの一覧は認証必須
		{Method: http.MethodGet, Path: "/inventory", RequiresIdentity: true},

		// 注文の状態更新は認証必須
		{Method: http.MethodPut, Path: "/api/orders/:id/status", RequiresIdentity: true},
	})
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 認証（認証局への中継）
	s.router.POST("/login", s.handleLogin())
	s.router.POST("/logout", s.handleLogout())
	s.router.GET("/validate-token", s.handleValidateToken())

	// クライアント台帳
	s.router.POST("/clients/create", s.handleClientCreate())
	s.router.GET("/clients", s.handleClientList())
	s.router.GET("/clients/:id", s.handleClientGet())
	s.router.PATCH("/clients/:id", s.handleClientUpdate())
	s.router.DELETE("/clients/:id", s.handleClientDelete())

	// 商品カタログ（中継）
	s.router.GET("/products", s.handleProductList())
	s.router.GET("/products/:id", s.handleProductGet())
	s.router.POST("/products", s.handleProductCreate())
	s.router.PATCH("/products/:id", s.handleProductUpdate())
	s.router.DELETE("/products/:id", s.handleProductDelete())

	// 在庫（商品カタログとの結合ビュー）
	s.router.GET("/inventory", s.handleInventoryList())
	s.router.GET("/inventory/:id", s.handleInventoryGet())
	s.router.PATCH("/inventory/:id", s.handleInventoryUpdateStock())

	// 注文
	api := s.router.Group("/api")
	{
		api.POST("/orders", s.handleOrderCreate())
		api.GET("/orders", s.handleOrderList())
		api.GET("/orders/:id", s.handleOrderGet())
		api.PUT("/orders/:id/status", s.handleOrderUpdateStatus())
		api.PATCH("/orders/:id", s.handleOrderCancel())
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gateway"})
	})
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
