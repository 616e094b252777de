package csvrepo

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/shoppos/internal/domain/model"
	"github.com/shopspring/decimal"
)

// salesHeader 銷售帳本固定的欄位順序
var salesHeader = []string{"date", "time", "customer", "items", "total", "discount", "grand_total"}

const (
	salesDateFormat = "2006-01-02"
	salesTimeFormat = "15:04:05"
)

type ISalesRepository interface {
	Append(ctx context.Context, sale *model.Sale) error
	GetAll(ctx context.Context) ([]model.Sale, error)
	GetByDateRange(ctx context.Context, from, to time.Time) ([]model.Sale, error)
}

// SalesRepo append-only 的銷售帳本，CSV 檔案為後端
// 新交易永遠追加在檔尾，既有列不再改寫
// items 欄位為嚴格 JSON schema，讀到格式錯誤的列直接回報
// StorageError，不做任何修補 (不容忍歷史上的單引號寫法)
type SalesRepo struct {
	path string
	mu   sync.Mutex
}

func NewSalesRepo(path string) *SalesRepo {
	return &SalesRepo{path: path}
}

// Append 追加一筆銷售紀錄，檔案不存在時先建立並寫入表頭
func (r *SalesRepo) Append(ctx context.Context, sale *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	itemsJSON, err := json.Marshal(sale.Items)
	if err != nil {
		return NewStorageError("append", r.path, err)
	}

	_, statErr := os.Stat(r.path)
	needHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return NewStorageError("append", r.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(salesHeader); err != nil {
			return NewStorageError("append", r.path, err)
		}
	}
	record := []string{
		sale.Timestamp.Format(salesDateFormat),
		sale.Timestamp.Format(salesTimeFormat),
		sale.Customer,
		string(itemsJSON),
		sale.Subtotal.String(),
		sale.Discount.String(),
		sale.GrandTotal.String(),
	}
	if err := w.Write(record); err != nil {
		return NewStorageError("append", r.path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return NewStorageError("append", r.path, err)
	}
	if err := f.Sync(); err != nil {
		return NewStorageError("append", r.path, err)
	}
	return nil
}

// GetAll 讀取整本帳本
// 錯誤:
//   - ErrLedgerUnavailable: 帳本檔案不存在
//   - StorageError: I/O 失敗或任一列格式錯誤
func (r *SalesRepo) GetAll(ctx context.Context) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readAllLocked()
}

// GetByDateRange 讀取時間落在 [from, to) 的銷售紀錄，前閉後開
func (r *SalesRepo) GetByDateRange(ctx context.Context, from, to time.Time) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sales, err := r.readAllLocked()
	if err != nil {
		return nil, err
	}

	matched := make([]model.Sale, 0, len(sales))
	for _, sale := range sales {
		if !sale.Timestamp.Before(from) && sale.Timestamp.Before(to) {
			matched = append(matched, sale)
		}
	}
	return matched, nil
}

func (r *SalesRepo) readAllLocked() ([]model.Sale, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrLedgerUnavailable
		}
		return nil, NewStorageError("read", r.path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, NewStorageError("read", r.path, err)
	}
	if len(records) == 0 {
		return []model.Sale{}, nil
	}

	sales := make([]model.Sale, 0, len(records)-1)
	for i, record := range records[1:] {
		sale, err := parseSaleRecord(record)
		if err != nil {
			return nil, NewStorageError("read", r.path, fmt.Errorf("row %d: %w", i+2, err))
		}
		sales = append(sales, *sale)
	}
	return sales, nil
}

func parseSaleRecord(record []string) (*model.Sale, error) {
	if len(record) != len(salesHeader) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(salesHeader), len(record))
	}

	timestamp, err := time.ParseInLocation(
		salesDateFormat+" "+salesTimeFormat,
		record[0]+" "+record[1],
		time.Local,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp: %w", err)
	}

	var items []model.SaleItem
	if err := json.Unmarshal([]byte(record[3]), &items); err != nil {
		return nil, fmt.Errorf("invalid items payload: %w", err)
	}

	subtotal, err := decimal.NewFromString(record[4])
	if err != nil {
		return nil, fmt.Errorf("invalid total %q: %w", record[4], err)
	}
	discount, err := decimal.NewFromString(record[5])
	if err != nil {
		return nil, fmt.Errorf("invalid discount %q: %w", record[5], err)
	}
	grandTotal, err := decimal.NewFromString(record[6])
	if err != nil {
		return nil, fmt.Errorf("invalid grand_total %q: %w", record[6], err)
	}

	return &model.Sale{
		SaleID:     timestamp.Format(model.SaleIDFormat),
		Timestamp:  timestamp,
		Customer:   record[2],
		Items:      items,
		Subtotal:   subtotal,
		Discount:   discount,
		GrandTotal: grandTotal,
	}, nil
}

var _ ISalesRepository = (*SalesRepo)(nil)
