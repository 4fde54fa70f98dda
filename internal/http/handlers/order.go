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

type OrderHandler struct {
	log     *logger.Logger
	service services.OrderService
}

func NewOrderHandler(log *logger.Logger, service services.OrderService) *OrderHandler {
	return &OrderHandler{
		log:     log.With("handler", "OrderHandler"),
		service: service,
	}
}

func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	found, err := h.service.GetOrder(c.Request.Context(), nil, orderID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, found)
}

func (h *OrderHandler) ListForUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	orders, err := h.service.ListUserOrders(c.Request.Context(), nil, userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, orders)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	var in struct {
		Status types.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}

	ctx := c.Request.Context()
	switch in.Status {
	case types.OrderConfirmed:
		err = h.service.Confirm(ctx, nil, orderID)
	case types.OrderFulfilled:
		err = h.service.Fulfill(ctx, nil, orderID)
	case types.OrderCancelled:
		err = h.service.Cancel(ctx, nil, orderID)
	default:
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated": true})
}
