package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/censudex/gateway/pkg/rpcclient"
)

// ordersClient は注文サービスへのRPC呼び出しをまとめたクライアント。
type ordersClient struct {
	// rpc は注文サービスへのRPCクライアント。
	rpc *rpcclient.Client
}

// newOrdersClient は注文サービスへのRPCクライアントを生成する。
func newOrdersClient(baseURL string) *ordersClient {
	return &ordersClient{rpc: rpcclient.New("orders", baseURL)}
}

// orderItem は注文内の1商品明細。
type orderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int64   `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal,omitempty"`
}

// orderRecord は注文サービスが返す注文情報。
type orderRecord struct {
	ID                 string      `json:"id"`
	ClientID           string      `json:"client_id"`
	Status             string      `json:"status"`
	TotalAmount        float64     `json:"total_amount"`
	ShippingAddress    string      `json:"shipping_address,omitempty"`
	TrackingNumber     string      `json:"tracking_number,omitempty"`
	CancellationReason string      `json:"cancellation_reason,omitempty"`
	CreatedAt          string      `json:"created_at,omitempty"`
	UpdatedAt          string      `json:"updated_at,omitempty"`
	Items              []orderItem `json:"items,omitempty"`
}

// createOrderRequest は注文作成のリクエストボディ。
type createOrderRequest struct {
	ClientID        string      `json:"client_id"`
	ShippingAddress string      `json:"shipping_address"`
	Items           []orderItem `json:"items"`
}

// listOrdersRequest は注文一覧取得のフィルター条件。
type listOrdersRequest struct {
	OrderID    string `json:"order_id,omitempty"`
	ClientID   string `json:"client_id,omitempty"`
	ClientName string `json:"client_name,omitempty"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
}

// listOrdersResponse は注文一覧取得のレスポンス。
type listOrdersResponse struct {
	TotalCount int64         `json:"total_count"`
	Orders     []orderRecord `json:"orders"`
}

// orderIDRequest は注文IDのみを指定するRPCリクエスト。
type orderIDRequest struct {
	OrderID string `json:"order_id"`
}

// updateOrderStatusRequest は注文ステータス更新のリクエスト。
type updateOrderStatusRequest struct {
	OrderID        string `json:"order_id"`
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

// cancelOrderRequest は注文キャンセルのリクエスト。
type cancelOrderRequest struct {
	OrderID            string `json:"order_id"`
	CancellationReason string `json:"cancellation_reason"`
}

// handleOrderCreate は注文を作成するハンドラーを返す。
func (s *Server) handleOrderCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}

		var order orderRecord
		if err := s.orders.rpc.Invoke(c.Request.Context(), "OrderService/CreateOrder", req, &order); err != nil {
			rpcclient.WriteError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// handleOrderList は注文一覧を取得するハンドラーを返す。
// クエリパラメータはRPCのフィルター条件に変換される。
// パラメータ名はcamelCase（例: orderId）とsnake_case（例: order_id）の両方を受け付ける。
func (s *Server) handleOrderList() gin.HandlerFunc {
	return func(c *gin.Context) {
		req := listOrdersRequest{
			OrderID:    queryAny(c, "orderId", "order_id"),
			ClientID:   queryAny(c, "clientId", "client_id"),
			ClientName: queryAny(c, "clientName", "client_name"),
			StartDate:  queryAny(c, "startDate", "start_date"),
			EndDate:    queryAny(c, "endDate", "end_date"),
		}

		var resp listOrdersResponse
		if err := s.orders.rpc.Invoke(c.Request.Context(), "OrderService/GetOrders", req, &resp); err != nil {
			rpcclient.WriteError(c, err)
			return
		}
		if resp.Orders == nil {
			resp.Orders = []orderRecord{}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// handleOrderGet は注文を1件取得するハンドラーを返す。
func (s *Server) handleOrderGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		var order orderRecord
		req := orderIDRequest{OrderID: c.Param("id")}
		if err := s.orders.rpc.Invoke(c.Request.Context(), "OrderService/GetOrderById", req, &order); err != nil {
			rpcclient.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// handleOrderUpdateStatus は注文ステータスを更新するハンドラーを返す。
// 対象の注文IDはパスパラメータの値で上書きする。
func (s *Server) handleOrderUpdateStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}
		req.OrderID = c.Param("id")

		var order orderRecord
		if err := s.orders.rpc.Invoke(c.Request.Context(), "OrderService/UpdateOrderStatus", req, &order); err != nil {
			rpcclient.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// handleOrderCancel は注文をキャンセルするハンドラーを返す。
func (s *Server) handleOrderCancel() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cancelOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディが不正です"})
			return
		}
		req.OrderID = c.Param("id")

		var order orderRecord
		if err := s.orders.rpc.Invoke(c.Request.Context(), "OrderService/CancelOrder", req, &order); err != nil {
			rpcclient.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
