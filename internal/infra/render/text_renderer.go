package render

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/RoyceAzure/lab/shoppos/internal/domain/model"
)

var (
	// ErrRenderFailed 發票輸出失敗
	// 此時交易的帳本與庫存影響都已持久化，重新從 Sale 產生發票即可補救
	ErrRenderFailed = errors.New("invoice render failed")
)

type IInvoiceRenderer interface {
	Render(invoice *model.Invoice) (string, error)
}

// TextRenderer 把發票投影輸出成純文字檔
// 版面沿用紙本發票格式: 店家表頭、發票編號與日期、明細表、
// 合計與折扣、付款說明與簽名欄
type TextRenderer struct {
	outputDir string
}

func NewTextRenderer(outputDir string) *TextRenderer {
	return &TextRenderer{outputDir: outputDir}
}

// Render 回傳寫出的檔案路徑
func (r *TextRenderer) Render(invoice *model.Invoice) (string, error) {
	var b strings.Builder

	writeCentered(&b, invoice.Shop.Name)
	writeCentered(&b, invoice.Shop.Address)
	writeCentered(&b, fmt.Sprintf("Phone: %s | Email: %s", invoice.Shop.Phone, invoice.Shop.Email))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Invoice No: %-20s Invoice Date: %s\n\n", invoice.Number, invoice.Date)
	fmt.Fprintf(&b, "From: %-30s Bill To: %s\n\n", invoice.Shop.Name, invoice.Customer)

	currency := invoice.Shop.Currency
	fmt.Fprintf(&b, "%-32s %5s %16s %16s\n", "Description", "Qty",
		fmt.Sprintf("Unit Price (%s)", currency), fmt.Sprintf("Amount (%s)", currency))
	b.WriteString(strings.Repeat("-", 72) + "\n")
	for _, line := range invoice.Lines {
		fmt.Fprintf(&b, "%-32s %5d %16s %16s\n",
			line.Name, line.Quantity, line.UnitPrice.StringFixed(2), line.LineTotal.StringFixed(2))
	}
	b.WriteString(strings.Repeat("-", 72) + "\n")

	fmt.Fprintf(&b, "%-55s %16s\n", "Total Amount", currency+" "+invoice.Subtotal.StringFixed(2))
	if invoice.Discount.IsPositive() {
		fmt.Fprintf(&b, "%-55s %16s\n", "Discount", "- "+currency+" "+invoice.Discount.StringFixed(2))
		fmt.Fprintf(&b, "%-55s %16s\n", "Grand Total", currency+" "+invoice.GrandTotal.StringFixed(2))
	}

	b.WriteString("\nPayment Instructions:\n")
	b.WriteString("Please make the payment by the due date.\n")
	b.WriteString("Authorized Signature:\n\n")
	b.WriteString("_____________________________\n")

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	path := filepath.Join(r.outputDir, invoice.Filename)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	return path, nil
}

const invoiceLineWidth = 72

func writeCentered(b *strings.Builder, s string) {
	pad := (invoiceLineWidth - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad) + s + "\n")
}

// OpenForViewing 用系統預設程式開啟檔案，不保證成功也不回報結果
func OpenForViewing(filename string) {
	_ = exec.Command("xdg-open", filename).Start()
}

var _ IInvoiceRenderer = (*TextRenderer)(nil)
