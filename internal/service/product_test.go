package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/repository"
)

type fakeProductRepo struct {
	products map[uint]domain.Product
	upserted []domain.Product
}

func (r *fakeProductRepo) Create(_ context.Context, p domain.Product) (domain.Product, error) {
	p.ID = uint(len(r.products) + 1)
	r.products[p.ID] = p

	return p, nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, storeID, id uint) (domain.Product, error) {
	p, ok := r.products[id]
	if !ok || p.StoreID != storeID {
		return domain.Product{}, repository.ErrProductNotFound
	}

	return p, nil
}

func (r *fakeProductRepo) FindAll(_ context.Context, storeID uint, _ domain.ProductFilter) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *fakeProductRepo) FindLowStock(_ context.Context, storeID uint, limit int) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.products {
		if p.StoreID == storeID && p.Stock <= limit {
			out = append(out, p)
		}
	}

	return out, nil
}

func (r *fakeProductRepo) Update(_ context.Context, p domain.Product) (domain.Product, error) {
	if _, ok := r.products[p.ID]; !ok {
		return domain.Product{}, repository.ErrProductNotFound
	}
	r.products[p.ID] = p

	return p, nil
}

func (r *fakeProductRepo) AdjustStock(_ context.Context, storeID, id uint, delta int) (domain.Product, error) {
	p, ok := r.products[id]
	if !ok || p.StoreID != storeID {
		return domain.Product{}, repository.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return domain.Product{}, repository.ErrInsufficientStock
	}
	p.Stock += delta
	r.products[id] = p

	return p, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, storeID, id uint) error {
	if _, err := r.FindByID(context.Background(), storeID, id); err != nil {
		return err
	}
	delete(r.products, id)

	return nil
}

func (r *fakeProductRepo) Upsert(_ context.Context, _ uint, products []domain.Product) (int, int, error) {
	r.upserted = append(r.upserted, products...)
	return len(products), 0, nil
}

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	return buf
}

func TestParseProductSheet(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Nombre", "Precio", "Stock", "Categoría", "Código"},
		{"Arroz Costeño 1kg", "4,50", 20, "Abarrotes", "7750243001234"},
		{"Leche Gloria", 3.8, 12, "Lácteos", "7751271000012"},
		{},
		{"Sin precio", "gratis", 5, "", ""},
		{"Stock raro", "1.00", "muchos", "", ""},
		{"", "2.00", 1, "", ""},
	})

	products, skipped, err := ParseProductSheet(buf)
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "Arroz Costeño 1kg", products[0].Name)
	assert.True(t, decimal.RequireFromString("4.50").Equal(products[0].Price))
	assert.Equal(t, 20, products[0].Stock)
	assert.Equal(t, "Abarrotes", products[0].Category)
	assert.Equal(t, "7750243001234", products[0].Barcode)
	assert.True(t, decimal.RequireFromString("3.80").Equal(products[1].Price))

	assert.Equal(t, []SkippedRow{
		{Row: 5, Reason: "precio no válido"},
		{Row: 6, Reason: "stock no válido"},
		{Row: 7, Reason: "producto no válido"},
	}, skipped)
}

func TestParseProductSheetMissingColumns(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Producto", "Stock"},
		{"Azúcar", 3},
	})

	_, _, err := ParseProductSheet(buf)
	assert.ErrorIs(t, err, ErrEmptyImport)
}

func TestParseProductSheetNotAWorkbook(t *testing.T) {
	_, _, err := ParseProductSheet(strings.NewReader("name,price\nArroz,4.5\n"))
	assert.ErrorIs(t, err, ErrInvalidImport)
}

func TestImportProducts(t *testing.T) {
	repo := &fakeProductRepo{products: map[uint]domain.Product{}}
	svc := NewProductService(repo)

	res, err := svc.ImportProducts(context.Background(), 1, workbook(t, [][]any{
		{"name", "price", "stock"},
		{"Fideos Don Vittorio", "2.60", 40},
		{"Aceite Primor", "-1", 10},
	}))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.Updated)
	assert.Len(t, res.Skipped, 1)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "Fideos Don Vittorio", repo.upserted[0].Name)

	_, err = svc.ImportProducts(context.Background(), 1, workbook(t, [][]any{
		{"name", "price"},
		{"Nada", "abc"},
	}))
	assert.ErrorIs(t, err, ErrEmptyImport)
}

func TestProductCRUD(t *testing.T) {
	repo := &fakeProductRepo{products: map[uint]domain.Product{}}
	svc := NewProductService(repo)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, domain.Product{StoreID: 1, Name: "", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	p, err := svc.CreateProduct(ctx, domain.Product{StoreID: 1, Name: "Azúcar Rubia", Price: decimal.RequireFromString("3.90"), Stock: 4})
	require.NoError(t, err)

	p, err = svc.AdjustStock(ctx, 1, p.ID, -3)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)

	_, err = svc.AdjustStock(ctx, 1, p.ID, -2)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = svc.GetProduct(ctx, 2, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, svc.DeleteProduct(ctx, 1, p.ID))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, 1, p.ID), ErrProductNotFound)
}
