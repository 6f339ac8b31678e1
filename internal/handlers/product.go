package handlers

import (
	"net/http"
	"strconv"

	"prodimport/internal/apiclient"
	"prodimport/internal/models"

	"github.com/labstack/echo/v4"
)

// ProductHandler は商品APIの中継ハンドラー
type ProductHandler struct {
	client *apiclient.Client
}

// NewProductHandler は新しいProductHandlerを作成
func NewProductHandler(client *apiclient.Client) *ProductHandler {
	return &ProductHandler{client: client}
}

// List は商品一覧を取得
func (h *ProductHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	filter, page := productQuery(c)

	result, err := h.client.ListProducts(ctx, page, filter)
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Get は商品を取得
func (h *ProductHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	product, err := h.client.GetProduct(ctx, c.Param("id"))
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// Create は商品を作成
func (h *ProductHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	var req models.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	product, err := h.client.CreateProduct(ctx, req)
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(http.StatusCreated, product)
}

// Update は商品を更新
func (h *ProductHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	var req models.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	product, err := h.client.UpdateProduct(ctx, c.Param("id"), req)
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

// Delete は商品を削除
func (h *ProductHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.client.DeleteProduct(ctx, c.Param("id")); err != nil {
		return relayError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteAll は全商品を削除
func (h *ProductHandler) DeleteAll(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.client.DeleteAllProducts(ctx); err != nil {
		return relayError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// productQuery はクエリから絞り込み条件とページ番号を読み取る
func productQuery(c echo.Context) (models.ProductFilter, int) {
	filter := models.ProductFilter{
		SKU:         c.QueryParam("sku"),
		Name:        c.QueryParam("name"),
		Description: c.QueryParam("description"),
		Active:      c.QueryParam("active"),
	}.Trim()

	page := 1
	if p := c.QueryParam("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	return filter, page
}
