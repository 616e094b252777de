package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/shoppos/internal/domain/model"
	"github.com/RoyceAzure/lab/shoppos/internal/infra/repository/csvrepo"
)

var (
	// ErrStockNotEnough 要求的數量超過目前庫存
	ErrStockNotEnough = errors.New("requested quantity exceeds available stock")
	// ErrInvalidQuantity 數量必須至少為 1
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrLineNotFound 購物車中沒有該商品
	ErrLineNotFound = errors.New("cart line not found")
)

type ICartService interface {
	AddLine(ctx context.Context, cart *model.Cart, productID int, quantity int) error
	EditLine(ctx context.Context, cart *model.Cart, productID int, newQuantity int) error
	RemoveLine(cart *model.Cart, productID int)
}

// CartService 操作外部傳入的購物車
// 購物車本身只是記憶體中的值，任意數量的購物車可以各自獨立存在
// 這裡不持有任何 current cart 狀態
type CartService struct {
	inventoryRepo csvrepo.IInventoryRepository
}

func NewCartService(inventoryRepo csvrepo.IInventoryRepository) *CartService {
	return &CartService{inventoryRepo: inventoryRepo}
}

// AddLine 將商品加入購物車
// 商品已在車內時合併數量，單價在第一次加入當下凍結
// 錯誤:
//   - ErrInvalidQuantity: quantity < 1
//   - csvrepo.ErrProductNotFound: 商品不存在
//   - ErrStockNotEnough: 車內總數量會超過目前庫存
func (s *CartService) AddLine(ctx context.Context, cart *model.Cart, productID int, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	product, err := s.inventoryRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	if line := cart.Find(productID); line != nil {
		if line.Quantity+quantity > product.Quantity {
			return ErrStockNotEnough
		}
		line.Quantity += quantity
		return nil
	}

	if quantity > product.Quantity {
		return ErrStockNotEnough
	}
	cart.Lines = append(cart.Lines, model.CartLine{
		ProductID: product.ProductID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  quantity,
	})
	return nil
}

// EditLine 覆寫車內商品的數量
// 移除商品請改用 RemoveLine，數量 0 不是合法輸入
// 錯誤:
//   - ErrInvalidQuantity: newQuantity < 1
//   - ErrLineNotFound: 商品不在車內
//   - ErrStockNotEnough: 新數量超過目前庫存
func (s *CartService) EditLine(ctx context.Context, cart *model.Cart, productID int, newQuantity int) error {
	if newQuantity < 1 {
		return ErrInvalidQuantity
	}

	line := cart.Find(productID)
	if line == nil {
		return ErrLineNotFound
	}

	product, err := s.inventoryRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if newQuantity > product.Quantity {
		return ErrStockNotEnough
	}

	line.Quantity = newQuantity
	return nil
}

// RemoveLine 冪等移除，商品不在車內時不回報錯誤
func (s *CartService) RemoveLine(cart *model.Cart, productID int) {
	cart.Remove(productID)
}

var _ ICartService = (*CartService)(nil)
