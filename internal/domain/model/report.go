package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ProductQuantity 報表中單一商品的銷售數量
type ProductQuantity struct {
	Name     string
	Quantity int
}

// SalesReport 日期區間內的銷售彙總
// 彙總 key 使用銷售快照中的商品名稱，不使用 product_id
// 商品改名後，改名前後的銷售會分屬不同 bucket
type SalesReport struct {
	From              time.Time
	To                time.Time
	SaleCount         int
	TotalRevenue      decimal.Decimal
	QuantityByProduct map[string]int
}

// SortedQuantities 依銷售數量由大到小排序，數量相同時依名稱排序
// 供報表顯示使用
func (r *SalesReport) SortedQuantities() []ProductQuantity {
	result := make([]ProductQuantity, 0, len(r.QuantityByProduct))
	for name, quantity := range r.QuantityByProduct {
		result = append(result, ProductQuantity{Name: name, Quantity: quantity})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Quantity != result[j].Quantity {
			return result[i].Quantity > result[j].Quantity
		}
		return result[i].Name < result[j].Name
	})
	return result
}
