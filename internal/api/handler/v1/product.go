package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/request"
	"github.com/bodegaapp/bodega-api/internal/api/handler/v1/response"
	"github.com/bodegaapp/bodega-api/internal/domain"
	"github.com/bodegaapp/bodega-api/internal/service"
)

const maxImportSize = 5 << 20

type ProductService interface {
	CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	GetProduct(ctx context.Context, storeID, id uint) (domain.Product, error)
	ListProducts(ctx context.Context, storeID uint, filter domain.ProductFilter) ([]domain.Product, error)
	LowStock(ctx context.Context, storeID uint, limit int) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	AdjustStock(ctx context.Context, storeID, id uint, delta int) (domain.Product, error)
	DeleteProduct(ctx context.Context, storeID, id uint) error
	ImportProducts(ctx context.Context, storeID uint, r io.Reader) (service.ImportResult, error)
}

type ProductHandler struct {
	svc           ProductService
	lowStockLimit int
}

func NewProductHandler(svc ProductService, lowStockLimit int) *ProductHandler {
	return &ProductHandler{
		svc:           svc,
		lowStockLimit: lowStockLimit,
	}
}

func productErr(err error, productID uint, op string) *response.Err {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		return response.ErrNotFound("product", "ID", productID)
	case errors.Is(err, service.ErrInvalidProduct):
		return response.ErrBadRequest(err)
	case errors.Is(err, service.ErrProductBarcodeExists),
		errors.Is(err, service.ErrInsufficientStock):
		return response.ErrConflict(err)
	}

	return response.ErrInternalServerError(fmt.Errorf("%s -> %w", op, err))
}

// HandleCreateProduct godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request  body      request.ProductRequest  true  "request body"
// @Success      201      {object}  domain.Product
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /products [post]
// @Security     BearerAuth
func (h *ProductHandler) HandleCreateProduct(ctx *gin.Context) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	product, err := h.svc.CreateProduct(ctx.Request.Context(), productFromRequest(req, storeID))
	if err != nil {
		response.RenderErr(ctx, productErr(err, 0, "HandleCreateProduct -> h.svc.CreateProduct"))
		return
	}

	ctx.JSON(http.StatusCreated, product)
}

// HandleListProducts godoc
// @Summary      List the products of the store
// @Tags         products
// @Produce      json
// @Param        q         query     string  false  "Name search"
// @Param        category  query     string  false  "Category"
// @Param        barcode   query     string  false  "Barcode"
// @Success      200       {array}   domain.Product
// @Router       /products [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleListProducts(ctx *gin.Context) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	products, err := h.svc.ListProducts(ctx.Request.Context(), storeID, domain.ProductFilter{
		Query:    ctx.Query("q"),
		Category: ctx.Query("category"),
		Barcode:  ctx.Query("barcode"),
	})
	if err != nil {
		err = fmt.Errorf("HandleListProducts -> h.svc.ListProducts -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, products)
}

// HandleLowStock godoc
// @Summary      List the products running out of stock
// @Tags         products
// @Produce      json
// @Param        limit  query     int  false  "Stock threshold"
// @Success      200    {array}   domain.Product
// @Failure      400    {object}  response.Err
// @Router       /products/low-stock [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleLowStock(ctx *gin.Context) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	limit := h.lowStockLimit
	if v := ctx.Query("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 0 {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid limit %q", v)))
			return
		}
		limit = l
	}

	products, err := h.svc.LowStock(ctx.Request.Context(), storeID, limit)
	if err != nil {
		err = fmt.Errorf("HandleLowStock -> h.svc.LowStock -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, products)
}

// HandleGetProduct godoc
// @Summary      Get a product
// @Tags         products
// @Produce      json
// @Param        productID  path      int  true  "Product ID"
// @Success      200        {object}  domain.Product
// @Failure      404        {object}  response.Err
// @Router       /products/{productID} [get]
// @Security     BearerAuth
func (h *ProductHandler) HandleGetProduct(ctx *gin.Context) {
	storeID, productID, respErr := h.params(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	product, err := h.svc.GetProduct(ctx.Request.Context(), storeID, productID)
	if err != nil {
		response.RenderErr(ctx, productErr(err, productID, "HandleGetProduct -> h.svc.GetProduct"))
		return
	}

	ctx.JSON(http.StatusOK, product)
}

// HandleUpdateProduct godoc
// @Summary      Update a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        productID  path      int                     true  "Product ID"
// @Param        request    body      request.ProductRequest  true  "request body"
// @Success      200        {object}  domain.Product
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /products/{productID} [put]
// @Security     BearerAuth
func (h *ProductHandler) HandleUpdateProduct(ctx *gin.Context) {
	storeID, productID, respErr := h.params(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	product := productFromRequest(req, storeID)
	product.ID = productID

	updated, err := h.svc.UpdateProduct(ctx.Request.Context(), product)
	if err != nil {
		response.RenderErr(ctx, productErr(err, productID, "HandleUpdateProduct -> h.svc.UpdateProduct"))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleAdjustStock godoc
// @Summary      Add to or remove from the stock of a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        productID  path      int                         true  "Product ID"
// @Param        request    body      request.StockAdjustRequest  true  "request body"
// @Success      200        {object}  domain.Product
// @Failure      400        {object}  response.Err
// @Failure      404        {object}  response.Err
// @Failure      409        {object}  response.Err
// @Router       /products/{productID}/stock [patch]
// @Security     BearerAuth
func (h *ProductHandler) HandleAdjustStock(ctx *gin.Context) {
	storeID, productID, respErr := h.params(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.StockAdjustRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	product, err := h.svc.AdjustStock(ctx.Request.Context(), storeID, productID, req.Delta)
	if err != nil {
		response.RenderErr(ctx, productErr(err, productID, "HandleAdjustStock -> h.svc.AdjustStock"))
		return
	}

	ctx.JSON(http.StatusOK, product)
}

// HandleDeleteProduct godoc
// @Summary      Delete a product
// @Tags         products
// @Param        productID  path  int  true  "Product ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /products/{productID} [delete]
// @Security     BearerAuth
func (h *ProductHandler) HandleDeleteProduct(ctx *gin.Context) {
	storeID, productID, respErr := h.params(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteProduct(ctx.Request.Context(), storeID, productID); err != nil {
		response.RenderErr(ctx, productErr(err, productID, "HandleDeleteProduct -> h.svc.DeleteProduct"))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleImportProducts godoc
// @Summary      Import products from an Excel workbook
// @Description  Columns: nombre, precio, stock, categoria, codigo. Rows are upserted by barcode.
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  ".xlsx workbook"
// @Success      200   {object}  service.ImportResult
// @Failure      400   {object}  response.Err
// @Router       /products/import [post]
// @Security     BearerAuth
func (h *ProductHandler) HandleImportProducts(ctx *gin.Context) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("missing file: %w", err)))
		return
	}
	if header.Size > maxImportSize {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("file larger than %d bytes", maxImportSize)))
		return
	}

	file, err := header.Open()
	if err != nil {
		err = fmt.Errorf("HandleImportProducts -> header.Open -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}
	defer file.Close()

	res, err := h.svc.ImportProducts(ctx.Request.Context(), storeID, file)
	if err != nil {
		if errors.Is(err, service.ErrInvalidImport) || errors.Is(err, service.ErrEmptyImport) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("HandleImportProducts -> h.svc.ImportProducts -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, res)
}

func (h *ProductHandler) params(ctx *gin.Context) (uint, uint, *response.Err) {
	storeID, respErr := getStoreID(ctx)
	if respErr != nil {
		return 0, 0, respErr
	}

	productID, respErr := parseUintParam(ctx, "productID")
	if respErr != nil {
		return 0, 0, respErr
	}

	return storeID, productID, nil
}

func productFromRequest(req request.ProductRequest, storeID uint) domain.Product {
	return domain.Product{
		StoreID:  storeID,
		Name:     req.Name,
		Price:    req.Price,
		Stock:    req.Stock,
		Category: req.Category,
		Barcode:  req.Barcode,
	}
}
