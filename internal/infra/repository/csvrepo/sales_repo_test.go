package csvrepo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/shoppos/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SalesRepoTestSuite struct {
	suite.Suite
	path string
	repo *SalesRepo
}

func (suite *SalesRepoTestSuite) SetupTest() {
	suite.path = filepath.Join(suite.T().TempDir(), "sales.csv")
	suite.repo = NewSalesRepo(suite.path)
}

func (suite *SalesRepoTestSuite) newSale(timestamp time.Time, customer string, grandTotal float64) *model.Sale {
	subtotal := decimal.NewFromFloat(grandTotal)
	return &model.Sale{
		SaleID:    timestamp.Format(model.SaleIDFormat),
		Timestamp: timestamp,
		Customer:  customer,
		Items: []model.SaleItem{
			{ProductID: 1, Name: "LED Bulb", Quantity: 2, Price: subtotal.Div(decimal.NewFromInt(2)), Total: subtotal},
		},
		Subtotal:   subtotal,
		Discount:   decimal.NewFromInt(0),
		GrandTotal: subtotal,
	}
}

func (suite *SalesRepoTestSuite) TestAppendCreatesFileWithHeader() {
	sale := suite.newSale(time.Date(2025, 3, 1, 10, 30, 0, 0, time.Local), "Ali", 300)

	err := suite.repo.Append(context.Background(), sale)
	require.NoError(suite.T(), err)

	raw, err := os.ReadFile(suite.path)
	require.NoError(suite.T(), err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(suite.T(), lines, 2)
	require.Equal(suite.T(), "date,time,customer,items,total,discount,grand_total", lines[0])
}

func (suite *SalesRepoTestSuite) TestAppendDoesNotRewriteExistingRows() {
	ctx := context.Background()
	first := suite.newSale(time.Date(2025, 3, 1, 10, 0, 0, 0, time.Local), "Ali", 300)
	require.NoError(suite.T(), suite.repo.Append(ctx, first))

	before, err := os.ReadFile(suite.path)
	require.NoError(suite.T(), err)

	second := suite.newSale(time.Date(2025, 3, 2, 11, 0, 0, 0, time.Local), "Sara", 150)
	require.NoError(suite.T(), suite.repo.Append(ctx, second))

	after, err := os.ReadFile(suite.path)
	require.NoError(suite.T(), err)
	// 舊的內容是新檔案的前綴，證明只有追加
	require.True(suite.T(), strings.HasPrefix(string(after), string(before)))

	sales, err := suite.repo.GetAll(ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), sales, 2)
}

func (suite *SalesRepoTestSuite) TestRoundTrip() {
	timestamp := time.Date(2025, 3, 1, 10, 30, 15, 0, time.Local)
	sale := suite.newSale(timestamp, "Ali", 300)
	sale.Discount = decimal.NewFromInt(50)
	sale.GrandTotal = sale.Subtotal.Sub(sale.Discount)

	require.NoError(suite.T(), suite.repo.Append(context.Background(), sale))

	sales, err := suite.repo.GetAll(context.Background())
	require.NoError(suite.T(), err)
	require.Len(suite.T(), sales, 1)

	loaded := sales[0]
	require.Equal(suite.T(), sale.SaleID, loaded.SaleID)
	require.True(suite.T(), timestamp.Equal(loaded.Timestamp))
	require.Equal(suite.T(), "Ali", loaded.Customer)
	require.Len(suite.T(), loaded.Items, 1)
	require.Equal(suite.T(), "LED Bulb", loaded.Items[0].Name)
	require.Equal(suite.T(), 2, loaded.Items[0].Quantity)
	require.True(suite.T(), sale.Subtotal.Equal(loaded.Subtotal))
	require.True(suite.T(), sale.Discount.Equal(loaded.Discount))
	require.True(suite.T(), sale.GrandTotal.Equal(loaded.GrandTotal))
}

func (suite *SalesRepoTestSuite) TestGetAllMissingFile() {
	_, err := suite.repo.GetAll(context.Background())
	require.ErrorIs(suite.T(), err, ErrLedgerUnavailable)
}

// TestMalformedItemsRejected 單引號的歷史寫法不做修補，直接回報儲存層錯誤
func (suite *SalesRepoTestSuite) TestMalformedItemsRejected() {
	content := "date,time,customer,items,total,discount,grand_total\n" +
		`2025-03-01,10:00:00,Ali,"[{'product_id': 1, 'name': 'LED Bulb', 'quantity': 2}]",300,0,300` + "\n"
	require.NoError(suite.T(), os.WriteFile(suite.path, []byte(content), 0o644))

	_, err := suite.repo.GetAll(context.Background())
	require.Error(suite.T(), err)
	require.True(suite.T(), IsStorageError(err))
}

func (suite *SalesRepoTestSuite) TestGetByDateRange() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.repo.Append(ctx, suite.newSale(time.Date(2025, 2, 28, 23, 59, 59, 0, time.Local), "Early", 100)))
	require.NoError(suite.T(), suite.repo.Append(ctx, suite.newSale(time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local), "FromDay", 200)))
	require.NoError(suite.T(), suite.repo.Append(ctx, suite.newSale(time.Date(2025, 3, 5, 12, 0, 0, 0, time.Local), "Middle", 300)))
	require.NoError(suite.T(), suite.repo.Append(ctx, suite.newSale(time.Date(2025, 3, 10, 23, 0, 0, 0, time.Local), "ToDay", 400)))
	require.NoError(suite.T(), suite.repo.Append(ctx, suite.newSale(time.Date(2025, 3, 11, 0, 0, 0, 0, time.Local), "Late", 500)))

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2025, 3, 11, 0, 0, 0, 0, time.Local) // 前閉後開
	sales, err := suite.repo.GetByDateRange(ctx, from, to)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), sales, 3)
	require.Equal(suite.T(), "FromDay", sales[0].Customer)
	require.Equal(suite.T(), "Middle", sales[1].Customer)
	require.Equal(suite.T(), "ToDay", sales[2].Customer)
}

func TestSalesRepoTestSuite(t *testing.T) {
	suite.Run(t, new(SalesRepoTestSuite))
}
