package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCustomerName 未填寫客戶名稱時的預設值
const DefaultCustomerName = "Customer"

// SaleIDFormat SaleID 由結帳時間推導的緊湊數字格式
const SaleIDFormat = "20060102150405"

// SaleItem 銷售紀錄中的商品快照
// 寫入帳本後不可變，後續商品改名或改價不會回溯影響歷史銷售
type SaleItem struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

// Sale 銷售帳本中的一筆完成交易
// 帳本為 append-only，一旦寫入不再修改或刪除
type Sale struct {
	SaleID     string          `json:"sale_id"`
	OpID       string          `json:"op_id"`
	Timestamp  time.Time       `json:"timestamp"`
	Customer   string          `json:"customer"`
	Items      []SaleItem      `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// NewSaleItems 從購物車內容建立不可變的商品快照
func NewSaleItems(lines []CartLine) []SaleItem {
	items := make([]SaleItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, SaleItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
			Total:     line.LineTotal(),
		})
	}
	return items
}

// Reversal 產生沖銷紀錄
// 庫存寫入失敗時用來抵銷已寫入帳本的交易，數量與金額全部取負
func (s *Sale) Reversal() *Sale {
	items := make([]SaleItem, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, SaleItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  -item.Quantity,
			Price:     item.Price,
			Total:     item.Total.Neg(),
		})
	}
	return &Sale{
		SaleID:     s.SaleID,
		OpID:       s.OpID,
		Timestamp:  s.Timestamp,
		Customer:   "REVERSAL:" + s.Customer,
		Items:      items,
		Subtotal:   s.Subtotal.Neg(),
		Discount:   s.Discount.Neg(),
		GrandTotal: s.GrandTotal.Neg(),
	}
}
