package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
)

type CatalogHandler struct {
	log     *logger.Logger
	service services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, service services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		log:     log.With("handler", "CatalogHandler"),
		service: service,
	}
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var in struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	created, err := h.service.CreateCategory(c.Request.Context(), nil, in.Name, in.Description)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondCreated(c, created)
}

func (h *CatalogHandler) GetCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	found, err := h.service.GetCategory(c.Request.Context(), nil, categoryID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, found)
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context(), nil)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, categories)
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	if err := h.service.UpdateCategory(c.Request.Context(), nil, categoryID, updates); err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated": true})
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	if err := h.service.DeleteCategory(c.Request.Context(), nil, categoryID); err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var in services.CreateProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	created, err := h.service.CreateProduct(c.Request.Context(), nil, in)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondCreated(c, created)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	found, err := h.service.GetProduct(c.Request.Context(), nil, productID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, found)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter repos.ProductFilter
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
			return
		}
		filter.CategoryID = &categoryID
	}
	if raw := c.Query("min_price_cents"); raw != "" {
		filter.MinPriceCents, _ = strconv.ParseInt(raw, 10, 64)
	}
	if raw := c.Query("max_price_cents"); raw != "" {
		filter.MaxPriceCents, _ = strconv.ParseInt(raw, 10, 64)
	}
	filter.InStockOnly = c.Query("in_stock") == "true"
	if raw := c.Query("limit"); raw != "" {
		filter.Limit, _ = strconv.Atoi(raw)
	}
	if raw := c.Query("offset"); raw != "" {
		filter.Offset, _ = strconv.Atoi(raw)
	}

	products, err := h.service.ListProducts(c.Request.Context(), nil, filter)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, products)
}

func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	if err := h.service.UpdateProduct(c.Request.Context(), nil, productID, updates); err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated": true})
}

func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	if err := h.service.DeleteProduct(c.Request.Context(), nil, productID); err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
