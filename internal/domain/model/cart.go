package model

import (
	"github.com/shopspring/decimal"
)

// CartLine 購物車中的單一商品項目
// UnitPrice 於加入當下從庫存表取得後凍結，不隨後續改價變動
type CartLine struct {
	ProductID int             `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// LineTotal 單項小計，永遠由 UnitPrice * Quantity 推導
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart 結帳前的未提交購物車，只存在於記憶體
// 同一個 ProductID 最多只會有一條 line，重複加入會合併數量
type Cart struct {
	Lines []CartLine `json:"lines"`
}

func NewCart() *Cart {
	return &Cart{Lines: make([]CartLine, 0)}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Find 取得指定商品的 line 指標，不存在回傳 nil
func (c *Cart) Find(productID int) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// Remove 移除指定商品的 line，不存在時不做任何事
func (c *Cart) Remove(productID int) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Subtotal 每次呼叫重新計算，不做快取
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.NewFromInt(0)
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	return subtotal
}

// Clear 清空購物車，結帳成功或放棄時使用
func (c *Cart) Clear() {
	c.Lines = c.Lines[:0]
}
