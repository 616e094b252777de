package csvrepo

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrDuplicateProductID 商品編號已存在
	ErrDuplicateProductID = errors.New("product id already exists")
	// ErrProductStockNotEnough 商品庫存不足
	ErrProductStockNotEnough = errors.New("product stock not enough")
	// ErrLedgerUnavailable 銷售帳本檔案不存在
	ErrLedgerUnavailable = errors.New("sales ledger is unavailable")
)

// StorageError 代表檔案儲存層的 I/O 或格式錯誤
// 發生時整個操作中止，先前的持久化狀態不受影響
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s on %s failed: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError 建立 StorageError
func NewStorageError(op, path string, err error) error {
	return &StorageError{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// IsStorageError 判斷是否為儲存層錯誤
func IsStorageError(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr)
}
