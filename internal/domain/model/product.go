package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidProduct 商品欄位驗證失敗
	ErrInvalidProduct = errors.New("invalid product")
)

// Product 庫存中的商品，ProductID 為唯一鍵
// 庫存表是唯一持有者，其他元件只會拿到複本
type Product struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Normalize 去除字串欄位前後空白
func (p *Product) Normalize() {
	p.Name = strings.TrimSpace(p.Name)
	p.Brand = strings.TrimSpace(p.Brand)
	p.Category = strings.TrimSpace(p.Category)
}

// Validate 檢查商品欄位
// name, brand, category 去除空白後不可為空
// quantity 不可為負數, price 不可為負數
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Brand) == "" {
		return fmt.Errorf("%w: brand is required", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidProduct)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	return nil
}
