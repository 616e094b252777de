package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/shoppos/internal/domain/model"
	"github.com/RoyceAzure/lab/shoppos/internal/infra/repository/csvrepo"
	"github.com/shopspring/decimal"
)

var (
	// ErrNoSalesData 區間內沒有任何銷售，屬於可回報的空結果，不是硬錯誤
	ErrNoSalesData = errors.New("no sales in the given period")
	// ErrInvalidDateRange 日期無法解析或區間顛倒
	ErrInvalidDateRange = errors.New("invalid date range")
)

// reportDateFormat 報表查詢的日期輸入格式
const reportDateFormat = "2006-01-02"

type IReportService interface {
	Aggregate(ctx context.Context, fromDate, toDate string) (*model.SalesReport, error)
}

// ReportService 對銷售帳本做唯讀彙總
// 相同帳本與區間的查詢結果固定，不依賴任何隱藏狀態
type ReportService struct {
	salesRepo csvrepo.ISalesRepository
}

func NewReportService(salesRepo csvrepo.ISalesRepository) *ReportService {
	return &ReportService{salesRepo: salesRepo}
}

// Aggregate 彙總 [fromDate, toDate] (含兩端) 內的銷售
// total_revenue 為區間內 grand_total 加總
// 數量彙總以快照中的商品名稱為 key: 名稱對人友善，且商品下架後
// 已無現存 id 可對應; 代價是改名前後會分屬不同 bucket
// 錯誤:
//   - ErrInvalidDateRange: 日期無法解析或 from 晚於 to
//   - ErrNoSalesData: 區間內沒有銷售
//   - csvrepo.ErrLedgerUnavailable: 帳本檔案不存在
func (s *ReportService) Aggregate(ctx context.Context, fromDate, toDate string) (*model.SalesReport, error) {
	from, err := time.ParseInLocation(reportDateFormat, fromDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: from date %q", ErrInvalidDateRange, fromDate)
	}
	to, err := time.ParseInLocation(reportDateFormat, toDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: to date %q", ErrInvalidDateRange, toDate)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: from %s is after to %s", ErrInvalidDateRange, fromDate, toDate)
	}

	// to 當天整天都要包含，查詢區間為前閉後開
	sales, err := s.salesRepo.GetByDateRange(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, ErrNoSalesData
	}

	report := &model.SalesReport{
		From:              from,
		To:                to,
		SaleCount:         len(sales),
		TotalRevenue:      decimal.NewFromInt(0),
		QuantityByProduct: make(map[string]int),
	}
	for _, sale := range sales {
		report.TotalRevenue = report.TotalRevenue.Add(sale.GrandTotal)
		for _, item := range sale.Items {
			report.QuantityByProduct[item.Name] += item.Quantity
		}
	}
	return report, nil
}

var _ IReportService = (*ReportService)(nil)
