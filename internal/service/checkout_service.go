package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/shoppos/internal/domain/model"
	"github.com/RoyceAzure/lab/shoppos/internal/infra/repository/csvrepo"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyCart 購物車沒有任何商品
	ErrEmptyCart = errors.New("cart has no items")
	// ErrInvalidDiscount 折扣必須介於 0 與小計之間
	ErrInvalidDiscount = errors.New("discount must be between zero and subtotal")
)

type ICheckoutService interface {
	Commit(ctx context.Context, cart *model.Cart, customerName string, discount decimal.Decimal) (*model.Sale, *model.Invoice, error)
}

// CheckoutService 把購物車轉成一筆完成的交易
// 驗證庫存、追加帳本、扣庫存必須被其他結帳視為單一動作，
// 所以整段流程都在同一把 mutex 底下執行，兩筆結帳不會交錯
type CheckoutService struct {
	mu            sync.Mutex
	inventoryRepo csvrepo.IInventoryRepository
	salesRepo     csvrepo.ISalesRepository
	shop          model.ShopInfo
	now           func() time.Time
}

func NewCheckoutService(inventoryRepo csvrepo.IInventoryRepository, salesRepo csvrepo.ISalesRepository, shop model.ShopInfo) *CheckoutService {
	return &CheckoutService{
		inventoryRepo: inventoryRepo,
		salesRepo:     salesRepo,
		shop:          shop,
		now:           time.Now,
	}
}

// Commit 結帳
//
// 流程:
//  1. 空車直接拒絕
//  2. 檢查折扣範圍
//  3. 以目前庫存重新驗證每一條 line (加入購物車之後庫存可能已變動)
//  4. 計算小計與實收金額
//  5. 建立不可變的 Sale 快照
//  6. 追加帳本，失敗則中止，庫存完全不動
//  7. 批次扣庫存並覆寫庫存檔，失敗時追加沖銷紀錄抵銷步驟 6
//  8. 產生發票投影、清空購物車
//
// 任何錯誤返回時購物車保持原狀，呼叫端可以修正後重試
// 錯誤:
//   - ErrEmptyCart, ErrInvalidDiscount, ErrStockNotEnough
//   - csvrepo.ErrProductNotFound: 商品在結帳前被刪除
//   - csvrepo.StorageError: 帳本或庫存檔寫入失敗
func (s *CheckoutService) Commit(ctx context.Context, cart *model.Cart, customerName string, discount decimal.Decimal) (*model.Sale, *model.Invoice, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, nil, ErrEmptyCart
	}

	subtotal := cart.Subtotal()
	if discount.IsNegative() || discount.GreaterThan(subtotal) {
		return nil, nil, ErrInvalidDiscount
	}

	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		customerName = model.DefaultCustomerName
	}

	opID := uuid.NewString()
	logger := log.With().Str("op_id", opID).Logger()

	s.mu.Lock()
	defer s.mu.Unlock()

	// 重新驗證每一條 line，全部通過才會動到任何持久化狀態
	deltas := make(map[int]int, len(cart.Lines))
	for _, line := range cart.Lines {
		product, err := s.inventoryRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("revalidate product %d: %w", line.ProductID, err)
		}
		if line.Quantity > product.Quantity {
			return nil, nil, fmt.Errorf("product %d has %d in stock, cart wants %d: %w",
				line.ProductID, product.Quantity, line.Quantity, ErrStockNotEnough)
		}
		deltas[line.ProductID] = -line.Quantity
	}

	timestamp := s.now()
	sale := &model.Sale{
		SaleID:     timestamp.Format(model.SaleIDFormat),
		OpID:       opID,
		Timestamp:  timestamp,
		Customer:   customerName,
		Items:      model.NewSaleItems(cart.Lines),
		Subtotal:   subtotal,
		Discount:   discount,
		GrandTotal: subtotal.Sub(discount),
	}

	// 帳本先行: 發票遺失可以從 Sale 重新產生，帳本遺失則無法補救
	if err := s.salesRepo.Append(ctx, sale); err != nil {
		logger.Error().Err(err).Msg("ledger append failed, commit aborted before stock change")
		return nil, nil, err
	}

	if err := s.inventoryRepo.AdjustStockBatch(ctx, deltas); err != nil {
		// 帳本已寫入，用沖銷紀錄抵銷，讓帳本與庫存保持一致
		if revErr := s.salesRepo.Append(ctx, sale.Reversal()); revErr != nil {
			logger.Error().Err(revErr).Str("sale_id", sale.SaleID).
				Msg("reversal append failed, ledger and inventory are inconsistent")
			return nil, nil, fmt.Errorf("stock adjustment failed and reversal append failed: %w", revErr)
		}
		logger.Warn().Err(err).Str("sale_id", sale.SaleID).Msg("stock adjustment failed, sale reversed")
		return nil, nil, err
	}

	invoice := model.BuildInvoice(sale, s.shop)
	cart.Clear()

	logger.Info().
		Str("sale_id", sale.SaleID).
		Str("customer", sale.Customer).
		Int("lines", len(sale.Items)).
		Str("grand_total", sale.GrandTotal.String()).
		Msg("sale committed")
	return sale, invoice, nil
}

var _ ICheckoutService = (*CheckoutService)(nil)
