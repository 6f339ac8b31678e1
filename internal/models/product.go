package models

import (
	"errors"
	"strings"
)

// DefaultPageSize はサーバーのページサイズ（total_pages が無い場合の計算に使う）
const DefaultPageSize = 20

// ErrEmptySKU はSKUが空の場合のエラー
var ErrEmptySKU = errors.New("sku cannot be empty")

// Product はリモートAPIが管理する商品
type Product struct {
	ID          string `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// ProductInput は商品の作成・更新リクエスト
type ProductInput struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// Normalize は前後の空白を取り除き、SKUを検証する
func (in *ProductInput) Normalize() error {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.SKU == "" {
		return ErrEmptySKU
	}
	return nil
}

// ProductFilter は商品一覧の絞り込み条件
// Active は "", "true", "false" のいずれか
type ProductFilter struct {
	SKU         string `json:"sku,omitempty" query:"sku"`
	Name        string `json:"name,omitempty" query:"name"`
	Description string `json:"description,omitempty" query:"description"`
	Active      string `json:"active,omitempty" query:"active"`
}

// Trim は全フィールドの前後の空白を取り除く
func (f ProductFilter) Trim() ProductFilter {
	return ProductFilter{
		SKU:         strings.TrimSpace(f.SKU),
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Active:      strings.TrimSpace(f.Active),
	}
}

// ProductPage は商品一覧の1ページ分
type ProductPage struct {
	Results    []Product `json:"results"`
	Count      int       `json:"count"`
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
}

// HasPrev は前のページがあるか
func (p *ProductPage) HasPrev() bool {
	return p.Page > 1
}

// HasNext は次のページがあるか
func (p *ProductPage) HasNext() bool {
	return p.Page < p.TotalPages
}
