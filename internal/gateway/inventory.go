package gateway

import (
	"bytes"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/censudex/gateway/pkg/upstream"
)

// stockRecord は在庫サービスが返す在庫レコード。
type stockRecord struct {
	ProductID string `json:"productid"`
	Stock     int64  `json:"stock"`
}

// joinedProductView は商品カタログと在庫を結合したビュー。
type joinedProductView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	IsActive bool   `json:"isActive"`
	Stock    int64  `json:"stock"`
}

// handleInventoryList は全商品の在庫付きビューを返すハンドラーを返す。
// 在庫サービスと商品サービスを並行に呼び出し、商品IDで結合する。
// どちらか一方でも失敗した場合は結合全体を失敗させ、部分的な結果は返さない。
func (s *Server) handleInventoryList() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := rawQuerySuffix(c)
		var invResp, prodResp *upstream.Response

		g, ctx := errgroup.WithContext(c.Request.Context())
		g.Go(func() error {
			resp, err := s.inventory.Get(ctx, "/api/Supabase/getAll"+query, nil)
			if err != nil {
				return err
			}
			invResp = resp
			return nil
		})
		g.Go(func() error {
			resp, err := s.products.Get(ctx, "/products"+query, nil)
			if err != nil {
				return err
			}
			prodResp = resp
			return nil
		})
		if err := g.Wait(); err != nil {
			failUnavailable(c, "在庫または商品", err)
			return
		}

		if !invResp.IsSuccess() {
			relayUpstreamError(c, invResp)
			return
		}
		if !prodResp.IsSuccess() {
			relayUpstreamError(c, prodResp)
			return
		}

		var stocks []stockRecord
		if !invResp.IsJSON() || invResp.DecodeJSON(&stocks) != nil {
			failContract(c, s.inventory.Name())
			return
		}
		var catalog []catalogRecord
		if !prodResp.IsJSON() || prodResp.DecodeJSON(&catalog) != nil {
			failContract(c, s.products.Name())
			return
		}

		c.JSON(http.StatusOK, joinProducts(catalog, stocks))
	}
}

// joinProducts は商品カタログと在庫レコードを商品IDで結合する。
// 商品の存在はカタログ側を正とし、在庫レコードの無い商品は在庫0として扱う。
// カタログに無い在庫レコードは結果に含めない。
func joinProducts(catalog []catalogRecord, stocks []stockRecord) []joinedProductView {
	stockByProduct := make(map[string]int64, len(stocks))
	for _, record := range stocks {
		stockByProduct[record.ProductID] = record.Stock
	}

	views := make([]joinedProductView, 0, len(catalog))
	for _, product := range catalog {
		views = append(views, joinedProductView{
			ID:       product.ID,
			Name:     product.Name,
			Category: product.Category,
			IsActive: product.IsActive,
			Stock:    stockByProduct[product.ID],
		})
	}
	return views
}

// handleInventoryGet は商品1件の在庫付きビューを返すハンドラーを返す。
// 商品の存在はカタログ側を正とするため、先に商品サービスへ問い合わせ、
// カタログの失敗（404を含む）はそのまま確定する。在庫レコードが
// 見つからない場合のみ在庫0として補完する。
func (s *Server) handleInventoryGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		query := rawQuerySuffix(c)

		prodResp, err := s.products.Get(c.Request.Context(), "/products/"+url.PathEscape(id)+query, nil)
		if err != nil {
			failUnavailable(c, s.products.Name(), err)
			return
		}
		if !prodResp.IsSuccess() {
			relayUpstreamError(c, prodResp)
			return
		}
		var product catalogRecord
		if !prodResp.IsJSON() || prodResp.DecodeJSON(&product) != nil {
			failContract(c, s.products.Name())
			return
		}

		invResp, err := s.inventory.Get(c.Request.Context(), "/api/Supabase/get/"+url.PathEscape(id)+query, nil)
		if err != nil {
			failUnavailable(c, s.inventory.Name(), err)
			return
		}

		var stock int64
		switch {
		case invResp.StatusCode == http.StatusNotFound:
			// 在庫レコード未作成の商品は在庫0として扱う
		case !invResp.IsSuccess():
			relayUpstreamError(c, invResp)
			return
		default:
			var record stockRecord
			if !invResp.IsJSON() || invResp.DecodeJSON(&record) != nil {
				failContract(c, s.inventory.Name())
				return
			}
			stock = record.Stock
		}

		c.JSON(http.StatusOK, joinedProductView{
			ID:       product.ID,
			Name:     product.Name,
			Category: product.Category,
			IsActive: product.IsActive,
			Stock:    stock,
		})
	}
}

// handleInventoryUpdateStock は在庫数の更新を在庫サービスに中継するハンドラーを返す。
func (s *Server) handleInventoryUpdateStock() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディの読み取りに失敗しました"})
			return
		}

		header := http.Header{}
		header.Set("Content-Type", "application/json")
		path := "/api/Supabase/update/set/" + url.PathEscape(c.Param("id"))
		resp, err := s.inventory.Do(c.Request.Context(), http.MethodPatch, path, header, bytes.NewReader(body))
		if err != nil {
			failUnavailable(c, s.inventory.Name(), err)
			return
		}
		relayUpstream(c, resp)
	}
}
