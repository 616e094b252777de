package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/RoyceAzure/lab/shoppos/internal/config"
	"github.com/RoyceAzure/lab/shoppos/internal/domain/model"
	"github.com/RoyceAzure/lab/shoppos/internal/infra/render"
	"github.com/RoyceAzure/lab/shoppos/internal/infra/repository/csvrepo"
	"github.com/RoyceAzure/lab/shoppos/internal/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	cf := config.GetConfig()

	level, err := zerolog.ParseLevel(cf.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

	inventoryRepo := csvrepo.NewInventoryRepo(cf.InventoryPath)
	salesRepo := csvrepo.NewSalesRepo(cf.SalesPath)
	cartService := service.NewCartService(inventoryRepo)
	checkoutService := service.NewCheckoutService(inventoryRepo, salesRepo, cf.ShopInfo())
	reportService := service.NewReportService(salesRepo)
	renderer := render.NewTextRenderer(cf.InvoiceDir)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx := context.Background()
	switch os.Args[1] {
	case "list":
		err = runList(ctx, inventoryRepo)
	case "add":
		err = runAdd(ctx, inventoryRepo, os.Args[2:])
	case "edit":
		err = runEdit(ctx, inventoryRepo, os.Args[2:])
	case "delete":
		err = runDelete(ctx, inventoryRepo, os.Args[2:])
	case "sell":
		err = runSell(ctx, cartService, checkoutService, renderer, os.Args[2:])
	case "report":
		err = runReport(ctx, reportService, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  shoppos list")
	fmt.Fprintln(os.Stderr, "  shoppos add <id> <name> <brand> <category> <qty> <price>")
	fmt.Fprintln(os.Stderr, "  shoppos edit <id> <name> <brand> <category> <qty> <price>")
	fmt.Fprintln(os.Stderr, "  shoppos delete <id>")
	fmt.Fprintln(os.Stderr, "  shoppos sell <customer> <discount> <productID>x<qty> [...]")
	fmt.Fprintln(os.Stderr, "  shoppos report <from YYYY-MM-DD> <to YYYY-MM-DD>")
}

func runList(ctx context.Context, repo csvrepo.IInventoryRepository) error {
	products, err := repo.GetAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%-10s %-24s %-14s %-14s %8s %12s\n", "ID", "Name", "Brand", "Category", "Qty", "Price")
	for _, p := range products {
		fmt.Printf("%-10d %-24s %-14s %-14s %8d %12s\n", p.ProductID, p.Name, p.Brand, p.Category, p.Quantity, p.Price.StringFixed(2))
	}
	return nil
}

// parseProductArgs 解析 <id> <name> <brand> <category> <qty> <price>
func parseProductArgs(args []string) (*model.Product, error) {
	if len(args) != 6 {
		return nil, fmt.Errorf("expected <id> <name> <brand> <category> <qty> <price>, got %d args", len(args))
	}
	productID, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", args[0], err)
	}
	quantity, err := strconv.Atoi(args[4])
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q: %w", args[4], err)
	}
	price, err := decimal.NewFromString(args[5])
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", args[5], err)
	}
	return &model.Product{
		ProductID: productID,
		Name:      args[1],
		Brand:     args[2],
		Category:  args[3],
		Quantity:  quantity,
		Price:     price,
	}, nil
}

func runAdd(ctx context.Context, repo csvrepo.IInventoryRepository, args []string) error {
	product, err := parseProductArgs(args)
	if err != nil {
		usage()
		return err
	}
	if err := repo.Create(ctx, product); err != nil {
		return err
	}
	fmt.Printf("product %d added\n", product.ProductID)
	return nil
}

func runEdit(ctx context.Context, repo csvrepo.IInventoryRepository, args []string) error {
	product, err := parseProductArgs(args)
	if err != nil {
		usage()
		return err
	}
	if err := repo.Update(ctx, *product); err != nil {
		return err
	}
	fmt.Printf("product %d updated\n", product.ProductID)
	return nil
}

func runDelete(ctx context.Context, repo csvrepo.IInventoryRepository, args []string) error {
	if len(args) != 1 {
		usage()
		return errors.New("delete needs a product id")
	}
	productID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid product id %q: %w", args[0], err)
	}
	if err := repo.Delete(ctx, productID); err != nil {
		return err
	}
	fmt.Printf("product %d deleted\n", productID)
	return nil
}

func runSell(ctx context.Context, carts *service.CartService, checkout *service.CheckoutService, renderer render.IInvoiceRenderer, args []string) error {
	if len(args) < 3 {
		usage()
		return errors.New("sell needs customer, discount and at least one item")
	}

	customer := args[0]
	discount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid discount %q: %w", args[1], err)
	}

	cart := model.NewCart()
	for _, arg := range args[2:] {
		productID, quantity, err := parseItemArg(arg)
		if err != nil {
			return err
		}
		if err := carts.AddLine(ctx, cart, productID, quantity); err != nil {
			return fmt.Errorf("add product %d: %w", productID, err)
		}
	}

	sale, invoice, err := checkout.Commit(ctx, cart, customer, discount)
	if err != nil {
		return err
	}

	// 交易已持久化，發票輸出失敗只記錄不回滾
	path, err := renderer.Render(invoice)
	if err != nil {
		log.Warn().Err(err).Str("sale_id", sale.SaleID).Msg("invoice render failed, re-render from the sale record")
	} else {
		fmt.Printf("invoice saved to %s\n", path)
		render.OpenForViewing(path)
	}
	fmt.Printf("sale %s committed, grand total %s\n", sale.SaleID, sale.GrandTotal.StringFixed(2))
	return nil
}

func parseItemArg(arg string) (productID, quantity int, err error) {
	parts := strings.SplitN(arg, "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid item %q, expected <productID>x<qty>", arg)
	}
	productID, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid product id %q: %w", parts[0], err)
	}
	quantity, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid quantity %q: %w", parts[1], err)
	}
	return productID, quantity, nil
}

func runReport(ctx context.Context, reports *service.ReportService, args []string) error {
	if len(args) != 2 {
		usage()
		return errors.New("report needs from and to dates")
	}

	report, err := reports.Aggregate(ctx, args[0], args[1])
	if err != nil {
		if errors.Is(err, service.ErrNoSalesData) {
			fmt.Println("no sales in this period")
			return nil
		}
		return err
	}

	fmt.Printf("sales from %s to %s: %d sales, total revenue %s\n",
		args[0], args[1], report.SaleCount, report.TotalRevenue.StringFixed(2))
	for _, pq := range report.SortedQuantities() {
		fmt.Printf("%-32s %6d\n", pq.Name, pq.Quantity)
	}
	return nil
}
