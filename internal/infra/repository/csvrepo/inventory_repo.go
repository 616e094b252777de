package csvrepo

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/RoyceAzure/lab/shoppos/internal/domain/model"
	"github.com/shopspring/decimal"
)

// inventoryHeader 庫存檔固定的欄位順序
var inventoryHeader = []string{"product_id", "name", "brand", "category", "quantity", "price"}

type IInventoryRepository interface {
	Reload(ctx context.Context) error
	GetAll(ctx context.Context) ([]model.Product, error)
	GetByID(ctx context.Context, productID int) (*model.Product, error)
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product model.Product) error
	Delete(ctx context.Context, productID int) error
	AdjustStock(ctx context.Context, productID int, delta int) error
	AdjustStockBatch(ctx context.Context, deltas map[int]int) error
}

// InventoryRepo CSV 檔案為後端的庫存表
// 整份載入、整份覆寫，寫入採 temp file + rename，讀取端只會看到
// 覆寫前或覆寫後的完整狀態
type InventoryRepo struct {
	path     string
	mu       sync.RWMutex
	products map[int]model.Product
}

// NewInventoryRepo 建立庫存表並載入現有檔案
// 檔案不存在或格式毀損時以空表啟動，不視為錯誤
func NewInventoryRepo(path string) *InventoryRepo {
	r := &InventoryRepo{
		path:     path,
		products: make(map[int]model.Product),
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloadLocked()
	return r
}

// Reload 重新從檔案載入，供背景刷新使用
// 與進行中的結帳並行時只會看到結帳前或結帳後的狀態
func (r *InventoryRepo) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloadLocked()
	return nil
}

// reloadLocked 毀損或缺檔一律回復為空表 (recoverable-by-default)
func (r *InventoryRepo) reloadLocked() {
	r.products = make(map[int]model.Product)

	f, err := os.Open(r.path)
	if err != nil {
		return
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil || len(records) == 0 {
		return
	}

	parsed := make(map[int]model.Product, len(records)-1)
	for _, record := range records[1:] {
		product, err := parseProductRecord(record)
		if err != nil {
			return
		}
		parsed[product.ProductID] = *product
	}
	r.products = parsed
}

func parseProductRecord(record []string) (*model.Product, error) {
	if len(record) != len(inventoryHeader) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(inventoryHeader), len(record))
	}
	productID, err := strconv.Atoi(record[0])
	if err != nil {
		return nil, fmt.Errorf("invalid product_id %q: %w", record[0], err)
	}
	quantity, err := strconv.Atoi(record[4])
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q: %w", record[4], err)
	}
	price, err := decimal.NewFromString(record[5])
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", record[5], err)
	}
	return &model.Product{
		ProductID: productID,
		Name:      record[1],
		Brand:     record[2],
		Category:  record[3],
		Quantity:  quantity,
		Price:     price,
	}, nil
}

// saveLocked 以 temp file + rename 覆寫整份庫存檔
// 列順序固定依 ProductID 排序，round-trip 結果與順序無關
func (r *InventoryRepo) saveLocked() error {
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".inventory-*.csv")
	if err != nil {
		return NewStorageError("save", r.path, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(inventoryHeader); err != nil {
		tmp.Close()
		return NewStorageError("save", r.path, err)
	}
	for _, product := range r.sortedLocked() {
		record := []string{
			strconv.Itoa(product.ProductID),
			product.Name,
			product.Brand,
			product.Category,
			strconv.Itoa(product.Quantity),
			product.Price.String(),
		}
		if err := w.Write(record); err != nil {
			tmp.Close()
			return NewStorageError("save", r.path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return NewStorageError("save", r.path, err)
	}
	if err := tmp.Close(); err != nil {
		return NewStorageError("save", r.path, err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return NewStorageError("save", r.path, err)
	}
	return nil
}

func (r *InventoryRepo) sortedLocked() []model.Product {
	products := make([]model.Product, 0, len(r.products))
	for _, product := range r.products {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].ProductID < products[j].ProductID
	})
	return products
}

// snapshotLocked 複製當前的商品表，寫檔失敗時用來還原
func (r *InventoryRepo) snapshotLocked() map[int]model.Product {
	snapshot := make(map[int]model.Product, len(r.products))
	for id, product := range r.products {
		snapshot[id] = product
	}
	return snapshot
}

// GetAll 回傳所有商品的複本，依 ProductID 排序
func (r *InventoryRepo) GetAll(ctx context.Context) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(), nil
}

// GetByID 回傳商品複本
func (r *InventoryRepo) GetByID(ctx context.Context, productID int) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// Create 新增商品
// 錯誤:
//   - ErrDuplicateProductID: 商品編號已存在
//   - model.ErrInvalidProduct: 欄位驗證失敗
func (r *InventoryRepo) Create(ctx context.Context, product *model.Product) error {
	product.Normalize()
	if err := product.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ProductID]; ok {
		return ErrDuplicateProductID
	}

	snapshot := r.snapshotLocked()
	r.products[product.ProductID] = *product
	if err := r.saveLocked(); err != nil {
		r.products = snapshot
		return err
	}
	return nil
}

// Update 覆寫既有商品的欄位
// 錯誤:
//   - ErrProductNotFound: 商品不存在
//   - model.ErrInvalidProduct: 欄位驗證失敗
func (r *InventoryRepo) Update(ctx context.Context, product model.Product) error {
	product.Normalize()
	if err := product.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ProductID]; !ok {
		return ErrProductNotFound
	}

	snapshot := r.snapshotLocked()
	r.products[product.ProductID] = product
	if err := r.saveLocked(); err != nil {
		r.products = snapshot
		return err
	}
	return nil
}

// Delete 刪除商品
func (r *InventoryRepo) Delete(ctx context.Context, productID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[productID]; !ok {
		return ErrProductNotFound
	}

	snapshot := r.snapshotLocked()
	delete(r.products, productID)
	if err := r.saveLocked(); err != nil {
		r.products = snapshot
		return err
	}
	return nil
}

// AdjustStock 調整單一商品庫存
// 錯誤:
//   - ErrProductNotFound: 商品不存在
//   - ErrProductStockNotEnough: 調整後庫存為負
func (r *InventoryRepo) AdjustStock(ctx context.Context, productID int, delta int) error {
	return r.AdjustStockBatch(ctx, map[int]int{productID: delta})
}

// AdjustStockBatch 一次調整多個商品的庫存，全部成功或全部不動
// 先驗證所有調整結果都不為負才套用，結帳扣庫存唯一會走這條路
func (r *InventoryRepo) AdjustStockBatch(ctx context.Context, deltas map[int]int) error {
	if len(deltas) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// 先全部驗證
	for productID, delta := range deltas {
		product, ok := r.products[productID]
		if !ok {
			return fmt.Errorf("%w: product %d", ErrProductNotFound, productID)
		}
		if product.Quantity+delta < 0 {
			return fmt.Errorf("%w: product %d has %d, delta %d", ErrProductStockNotEnough, productID, product.Quantity, delta)
		}
	}

	snapshot := r.snapshotLocked()
	for productID, delta := range deltas {
		product := r.products[productID]
		product.Quantity += delta
		r.products[productID] = product
	}
	if err := r.saveLocked(); err != nil {
		r.products = snapshot
		return err
	}
	return nil
}

var _ IInventoryRepository = (*InventoryRepo)(nil)
