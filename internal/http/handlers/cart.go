package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
)

type CartHandler struct {
	log     *logger.Logger
	service services.CartService
}

func NewCartHandler(log *logger.Logger, service services.CartService) *CartHandler {
	return &CartHandler{
		log:     log.With("handler", "CartHandler"),
		service: service,
	}
}

func (h *CartHandler) Get(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	active, err := h.service.GetActiveCart(c.Request.Context(), nil, userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, active)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	var in struct {
		ProductID uuid.UUID `json:"product_id"`
		Quantity  int64     `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	updated, err := h.service.AddItem(c.Request.Context(), nil, userID, in.ProductID, in.Quantity)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	var in struct {
		Quantity int64 `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	updated, err := h.service.UpdateQuantity(c.Request.Context(), nil, userID, productID, in.Quantity)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	updated, err := h.service.RemoveItem(c.Request.Context(), nil, userID, productID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}
