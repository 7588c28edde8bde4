package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elyasalemi10/bwa-catalog/constants"
	"github.com/elyasalemi10/bwa-catalog/internal/common"
	"github.com/elyasalemi10/bwa-catalog/internal/entity"
	"github.com/elyasalemi10/bwa-catalog/internal/export"
	"github.com/elyasalemi10/bwa-catalog/internal/pipeline"
	"github.com/elyasalemi10/bwa-catalog/internal/repository"
)

// Pipeline is the ingestion surface the handlers call.
type Pipeline interface {
	ImportPDF(ctx context.Context, data []byte, category, profileName string) (*pipeline.ImportSummary, error)
	SelectFromPDF(ctx context.Context, data []byte, profileName string) (*pipeline.SelectionResult, error)
}

// Exporter renders selection documents.
type Exporter interface {
	ExportSelection(ctx context.Context, header export.Header, codes []string) ([]byte, error)
}

// Importer mints codes for manual product entry.
type Importer interface {
	Import(ctx context.Context, category string, p entity.Product) (*entity.Product, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	processor Pipeline
	products  repository.ProductRepository
	importer  Importer
	exporter  Exporter
	maxUpload int64
}

func NewHandler(processor Pipeline, products repository.ProductRepository, importer Importer, exporter Exporter, maxUpload int64) *Handler {
	return &Handler{
		processor: processor,
		products:  products,
		importer:  importer,
		exporter:  exporter,
		maxUpload: maxUpload,
	}
}

// Health returns the health status of the API
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "bwa-catalog",
	})
}

// ImportCatalog ingests a vendor quote PDF and imports its records under a
// category, minting fresh catalog codes.
func (h *Handler) ImportCatalog(c *gin.Context) {
	category := strings.TrimSpace(c.PostForm("category"))
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category is required"})
		return
	}
	profile := strings.TrimSpace(c.PostForm("profile"))

	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	summary, err := h.processor.ImportPDF(c.Request.Context(), data, category, profile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExtractSelection ingests a vendor document and reconciles its codes
// against the catalog for a live selection draft.
func (h *Handler) ExtractSelection(c *gin.Context) {
	profile := strings.TrimSpace(c.PostForm("profile"))

	data, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.processor.SelectFromPDF(c.Request.Context(), data, profile)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type exportRequest struct {
	Codes       []string `json:"codes" binding:"required,min=1"`
	ProjectName string   `json:"project_name"`
	Address     string   `json:"address"`
	Contact     string   `json:"contact"`
	Date        string   `json:"date"`
}

// ExportSelection renders the final selection document for a set of codes.
func (h *Handler) ExportSelection(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "codes are required"})
		return
	}

	header := export.Header{
		ProjectName: req.ProjectName,
		Address:     req.Address,
		Contact:     req.Contact,
	}
	if req.Date != "" {
		d, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		header.Date = d
	}

	data, err := h.exporter.ExportSelection(c.Request.Context(), header, req.Codes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="selection.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ListProducts returns catalog rows, optionally filtered by category.
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.products.ListByCategory(c.Request.Context(), strings.TrimSpace(c.Query("category")))
	if err != nil {
		respondError(c, err)
		return
	}
	if products == nil {
		products = []*entity.Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct returns one catalog row by code.
func (h *Handler) GetProduct(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	product, err := h.products.GetByCode(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

type createProductRequest struct {
	Category                string `json:"category" binding:"required"`
	Description             string `json:"description"`
	ManufacturerDescription string `json:"manufacturer_description"`
	ProductDetails          string `json:"product_details"`
	Price                   string `json:"price"`
	ImageURL                string `json:"image_url"`
}

// CreateProduct adds a manually entered product, allocating its code.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category is required"})
		return
	}

	created, err := h.importer.Import(c.Request.Context(), req.Category, entity.Product{
		Description:             req.Description,
		ManufacturerDescription: req.ManufacturerDescription,
		ProductDetails:          req.ProductDetails,
		Price:                   req.Price,
		ImageURL:                req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// readUpload pulls the "file" form part, enforcing extension and size caps.
func (h *Handler) readUpload(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return nil, false
	}
	if !constants.AllowedExt(filepath.Ext(fileHeader.Filename)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF uploads are accepted"})
		return nil, false
	}
	if h.maxUpload > 0 && fileHeader.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
		return nil, false
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "upload unreadable"})
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "upload unreadable"})
		return nil, false
	}
	return data, true
}

// respondError maps application errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrExtraction):
		// Recoverable: the operator sees "no products found" and falls back
		// to manual entry.
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrAllocationConflict), errors.Is(err, common.ErrCodeExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrCatalogLookup):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
