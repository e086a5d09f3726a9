package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/nvidela/shop-assistant/internal/adapter/storage"
	"github.com/nvidela/shop-assistant/internal/core/domain"
	"github.com/nvidela/shop-assistant/pkg/retry"
	"github.com/nvidela/shop-assistant/pkg/sigctx"
	"github.com/spf13/pflag"
	"github.com/xuri/excelize/v2"
)

// Loads products from the supplier price list. Only the first tenth of
// the sheet is imported, matching the demo catalog size.

const (
	dsnFlag  = "dsn"
	fileFlag = "file"

	colName        = "TIPO_PRENDA"
	colDescription = "DESCRIPCIÓN"
	colPrice       = "PRECIO_50_U"
	colStock       = "CANTIDAD_DISPONIBLE"

	importShare = 0.1
)

func main() {
	sigCtx, closeApp := sigctx.NotifyContext()
	defer closeApp()

	dsn, file := getFlagsValues()
	validateFlags(dsn, file)

	ps, err := readProducts(file)
	if err != nil {
		slog.Error("failed to read products", "err", err)
		fallDown()
	}

	sqldb := connect(sigCtx, dsn)
	defer sqldb.Close()

	repo := storage.NewProductsRepository(sqldb)
	if err := repo.InsertProducts(sigCtx, ps); err != nil {
		slog.Error("failed to insert products", "err", err)
		fallDown()
	}

	fmt.Printf("%d productos cargados exitosamente\n", len(ps))
}

func getFlagsValues() (dsn, file string) {
	dsnP := pflag.StringP(dsnFlag, "d", "", "")
	fileP := pflag.StringP(fileFlag, "f", "", "")
	pflag.Parse()
	return *dsnP, *fileP
}

func validateFlags(dsn, file string) {
	var missing []string
	if dsn == "" {
		missing = append(missing, dsnFlag)
	}
	if file == "" {
		missing = append(missing, fileFlag)
	}
	if len(missing) != 0 {
		slog.Error("too few args", "required", missing)
		fallDown()
	}
}

func connect(ctx context.Context, dsn string) storage.SQLDB {
	sqldb, err := retry.DoWithResult(ctx, retry.RetryConfig{
		MaxAttempts: 5,
		Backoff:     retry.ExponentialBackoff(500 * time.Millisecond),
	}, func() (storage.SQLDB, error) {
		return storage.NewSQLDB(ctx, dsn)
	})
	if err != nil {
		slog.Error("database is unavailable", "err", err)
		fallDown()
	}
	return sqldb
}

func readProducts(path string) ([]domain.Product, error) {
	const op = "readProducts"

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: sheet has no data rows", op)
	}

	cols, err := findColumns(rows[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data := rows[1:]
	n := int(math.Ceil(float64(len(data)) * importShare))

	var ps []domain.Product
	for _, row := range data[:n] {
		p, err := rowToProduct(row, cols)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ps = append(ps, p)
	}
	return ps, nil
}

type columns struct {
	name, description, price, stock int
}

func findColumns(header []string) (columns, error) {
	idx := map[string]int{}
	for i, h := range header {
		idx[h] = i
	}

	cols := columns{name: -1, description: -1, price: -1, stock: -1}
	required := map[string]*int{
		colName:        &cols.name,
		colDescription: &cols.description,
		colPrice:       &cols.price,
		colStock:       &cols.stock,
	}
	for name, dst := range required {
		i, ok := idx[name]
		if !ok {
			return columns{}, fmt.Errorf("missing column %q", name)
		}
		*dst = i
	}
	return cols, nil
}

func rowToProduct(row []string, cols columns) (domain.Product, error) {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	price, err := strconv.ParseFloat(cell(cols.price), 64)
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid price %q: %w", cell(cols.price), err)
	}
	stock, err := strconv.Atoi(cell(cols.stock))
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid stock %q: %w", cell(cols.stock), err)
	}

	return domain.Product{
		Name:        cell(cols.name),
		Description: cell(cols.description),
		Price:       price,
		Stock:       stock,
	}, nil
}

func fallDown() {
	os.Exit(2)
}
