package model

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testSale() *Sale {
	price := decimal.NewFromInt(100)
	return &Sale{
		SaleID:    "20250301103015",
		Timestamp: time.Date(2025, 3, 1, 10, 30, 15, 0, time.Local),
		Customer:  "Ali",
		Items: []SaleItem{
			{ProductID: 1, Name: "Extra Long Product Name That Goes On And On", Quantity: 2, Price: price, Total: price.Mul(decimal.NewFromInt(2))},
		},
		Subtotal:   decimal.NewFromInt(200),
		Discount:   decimal.NewFromInt(20),
		GrandTotal: decimal.NewFromInt(180),
	}
}

func TestBuildInvoice(t *testing.T) {
	invoice := BuildInvoice(testSale(), ShopInfo{Name: "ELECTRO Hub", Currency: "Rs"})

	require.Equal(t, "INV-103015", invoice.Number)
	require.Equal(t, "01-Mar-2025", invoice.Date)
	require.Equal(t, "invoice_20250301_103015.txt", invoice.Filename)
	require.Equal(t, "Ali", invoice.Customer)
	require.Len(t, invoice.Lines, 1)
	require.Len(t, invoice.Lines[0].Name, InvoiceNameWidth)
	require.True(t, decimal.NewFromInt(180).Equal(invoice.GrandTotal))
}

// TestBuildInvoiceMultiByteName 截斷落在多位元組字元上時必須以字元為單位
func TestBuildInvoiceMultiByteName(t *testing.T) {
	sale := testSale()
	sale.Items[0].Name = strings.Repeat("燈", InvoiceNameWidth+5)

	invoice := BuildInvoice(sale, ShopInfo{Name: "ELECTRO Hub", Currency: "Rs"})
	got := invoice.Lines[0].Name
	require.True(t, utf8.ValidString(got))
	require.Equal(t, InvoiceNameWidth, utf8.RuneCountInString(got))
	require.Equal(t, strings.Repeat("燈", InvoiceNameWidth), got)
}

// TestBuildInvoiceReproducible 同一筆 Sale 永遠產生相同的發票投影
func TestBuildInvoiceReproducible(t *testing.T) {
	sale := testSale()
	shop := ShopInfo{Name: "ELECTRO Hub", Currency: "Rs"}
	require.Equal(t, BuildInvoice(sale, shop), BuildInvoice(sale, shop))
}

func TestSaleReversal(t *testing.T) {
	sale := testSale()
	reversal := sale.Reversal()

	require.Equal(t, "REVERSAL:Ali", reversal.Customer)
	require.Equal(t, -2, reversal.Items[0].Quantity)
	require.True(t, sale.GrandTotal.Neg().Equal(reversal.GrandTotal))
	require.True(t, sale.GrandTotal.Add(reversal.GrandTotal).IsZero())
}

func TestCartSubtotalDerived(t *testing.T) {
	cart := NewCart()
	require.True(t, cart.Subtotal().IsZero())

	cart.Lines = append(cart.Lines, CartLine{ProductID: 1, Name: "A", UnitPrice: decimal.NewFromInt(100), Quantity: 3})
	cart.Lines = append(cart.Lines, CartLine{ProductID: 2, Name: "B", UnitPrice: decimal.NewFromFloat(2.5), Quantity: 2})
	require.True(t, decimal.NewFromInt(305).Equal(cart.Subtotal()))

	cart.Lines[0].Quantity = 1
	// 不做快取，改動後立即反映
	require.True(t, decimal.NewFromInt(105).Equal(cart.Subtotal()))
}
