package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/repository"
)

var (
	ErrProductNotFound      = repository.ErrProductNotFound
	ErrProductBarcodeExists = repository.ErrProductBarcodeExists
	ErrInvalidProduct       = errors.New("product needs a name, a non negative price and a non negative stock")
	ErrEmptyImport          = errors.New("import file has no products")
	ErrInvalidImport        = errors.New("import file is not an .xlsx workbook")
)

type ProductRepository interface {
	Create(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, storeID, id uint) (domain.Product, error)
	FindAll(ctx context.Context, storeID uint, filter domain.ProductFilter) ([]domain.Product, error)
	FindLowStock(ctx context.Context, storeID uint, limit int) ([]domain.Product, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	AdjustStock(ctx context.Context, storeID, id uint, delta int) (domain.Product, error)
	Delete(ctx context.Context, storeID, id uint) error
	Upsert(ctx context.Context, storeID uint, products []domain.Product) (int, int, error)
}

type ProductService struct {
	repo ProductRepository
}

func NewProductService(repo ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

func validProduct(p domain.Product) bool {
	return strings.TrimSpace(p.Name) != "" && !p.Price.IsNegative() && p.Stock >= 0
}

func (s *ProductService) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if !validProduct(product) {
		return domain.Product{}, ErrInvalidProduct
	}
	product.ID = 0

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *ProductService) GetProduct(ctx context.Context, storeID, id uint) (domain.Product, error) {
	product, err := s.repo.FindByID(ctx, storeID, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, storeID uint, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := s.repo.FindAll(ctx, storeID, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return products, nil
}

func (s *ProductService) LowStock(ctx context.Context, storeID uint, limit int) ([]domain.Product, error) {
	products, err := s.repo.FindLowStock(ctx, storeID, limit)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindLowStock -> %w", err)
	}

	return products, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if !validProduct(product) {
		return domain.Product{}, ErrInvalidProduct
	}

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// AdjustStock adds delta (which may be negative) to the product stock.
func (s *ProductService) AdjustStock(ctx context.Context, storeID, id uint, delta int) (domain.Product, error) {
	product, err := s.repo.AdjustStock(ctx, storeID, id, delta)
	if err != nil {
		return domain.Product{}, fmt.Errorf("s.repo.AdjustStock -> %w", err)
	}

	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, storeID, id uint) error {
	if err := s.repo.Delete(ctx, storeID, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

type ImportResult struct {
	Created int          `json:"created"`
	Updated int          `json:"updated"`
	Skipped []SkippedRow `json:"skipped"`
}

type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportProducts reads products from the first sheet of an .xlsx workbook and
// upserts them by barcode.
func (s *ProductService) ImportProducts(ctx context.Context, storeID uint, r io.Reader) (ImportResult, error) {
	products, skipped, err := ParseProductSheet(r)
	if err != nil {
		return ImportResult{}, err
	}
	if len(products) == 0 {
		return ImportResult{Skipped: skipped}, ErrEmptyImport
	}

	created, updated, err := s.repo.Upsert(ctx, storeID, products)
	if err != nil {
		return ImportResult{}, fmt.Errorf("s.repo.Upsert -> %w", err)
	}

	return ImportResult{Created: created, Updated: updated, Skipped: skipped}, nil
}

var importColumns = map[string][]string{
	"name":     {"name", "nombre", "producto"},
	"price":    {"price", "precio"},
	"stock":    {"stock", "cantidad"},
	"category": {"category", "categoria", "categoría"},
	"barcode":  {"barcode", "codigo", "código", "código de barras", "codigo de barras"},
}

// ParseProductSheet parses the first sheet of an .xlsx workbook. The first row
// is a header naming the columns (name, price, stock, category, barcode, in
// English or Spanish). Rows that cannot be read are reported, not fatal.
func ParseProductSheet(r io.Reader) ([]domain.Product, []SkippedRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, ErrEmptyImport
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("f.GetRows -> %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, ErrEmptyImport
	}

	cols := mapImportColumns(rows[0])
	if _, ok := cols["name"]; !ok {
		return nil, nil, fmt.Errorf("%w: missing name column", ErrEmptyImport)
	}
	if _, ok := cols["price"]; !ok {
		return nil, nil, fmt.Errorf("%w: missing price column", ErrEmptyImport)
	}

	var (
		products []domain.Product
		skipped  []SkippedRow
	)
	for i, row := range rows[1:] {
		rowNumber := i + 2
		cell := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}

			return strings.TrimSpace(row[idx])
		}

		if isBlankRow(row) {
			continue
		}

		product := domain.Product{
			Name:     cell("name"),
			Category: cell("category"),
			Barcode:  cell("barcode"),
		}

		price, err := decimal.NewFromString(strings.ReplaceAll(cell("price"), ",", "."))
		if err != nil {
			skipped = append(skipped, SkippedRow{Row: rowNumber, Reason: "precio no válido"})
			continue
		}
		product.Price = price.Round(2)

		if raw := cell("stock"); raw != "" {
			stock, err := strconv.Atoi(raw)
			if err != nil {
				skipped = append(skipped, SkippedRow{Row: rowNumber, Reason: "stock no válido"})
				continue
			}
			product.Stock = stock
		}

		if !validProduct(product) {
			skipped = append(skipped, SkippedRow{Row: rowNumber, Reason: "producto no válido"})
			continue
		}

		products = append(products, product)
	}

	return products, skipped, nil
}

func mapImportColumns(header []string) map[string]int {
	cols := make(map[string]int)
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		for field, aliases := range importColumns {
			for _, alias := range aliases {
				if name == alias {
					cols[field] = i
				}
			}
		}
	}

	return cols
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}
