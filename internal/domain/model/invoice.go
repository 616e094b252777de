package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InvoiceNameWidth 明細中商品名稱的顯示寬度上限
const InvoiceNameWidth = 30

// ShopInfo 發票表頭的店家資訊
type ShopInfo struct {
	Name     string
	Address  string
	Phone    string
	Email    string
	Currency string
}

// InvoiceLine 發票明細中的一列
type InvoiceLine struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Invoice 單筆 Sale 的渲染投影
// 只是交給外部 renderer 的資料，不屬於持久化模型
// 內容必須可以從對應的 Sale 重新產生
type Invoice struct {
	Number     string
	Date       string
	Customer   string
	Shop       ShopInfo
	Lines      []InvoiceLine
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
	Filename   string
}

// BuildInvoice 從 Sale 建立發票投影
// 發票號碼取 SaleID (緊湊數字時間戳) 的末六碼
func BuildInvoice(sale *Sale, shop ShopInfo) *Invoice {
	number := sale.SaleID
	if len(number) > 6 {
		number = number[len(number)-6:]
	}

	lines := make([]InvoiceLine, 0, len(sale.Items))
	for _, item := range sale.Items {
		name := item.Name
		// 以 rune 截斷，多位元組名稱不能切在字元中間
		if runes := []rune(name); len(runes) > InvoiceNameWidth {
			name = string(runes[:InvoiceNameWidth])
		}
		lines = append(lines, InvoiceLine{
			Name:      name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			LineTotal: item.Total,
		})
	}

	return &Invoice{
		Number:     "INV-" + number,
		Date:       sale.Timestamp.Format("02-Jan-2006"),
		Customer:   sale.Customer,
		Shop:       shop,
		Lines:      lines,
		Subtotal:   sale.Subtotal,
		Discount:   sale.Discount,
		GrandTotal: sale.GrandTotal,
		Filename:   fmt.Sprintf("invoice_%s.txt", sale.Timestamp.Format("20060102_150405")),
	}
}
