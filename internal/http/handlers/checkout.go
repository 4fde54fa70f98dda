package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
)

const idempotencyHeader = "Idempotency-Key"

type CheckoutHandler struct {
	log     *logger.Logger
	service services.CheckoutService
}

func NewCheckoutHandler(log *logger.Logger, service services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		log:     log.With("handler", "CheckoutHandler"),
		service: service,
	}
}

func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var in struct {
		UserID uuid.UUID `json:"user_id"`
		CartID uuid.UUID `json:"cart_id"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	if in.UserID == uuid.Nil || in.CartID == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}

	key := strings.TrimSpace(c.GetHeader(idempotencyHeader))

	result, err := h.service.Checkout(c.Request.Context(), in.UserID, in.CartID, key)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"order_id":   result.OrderID,
		"attempt_id": result.AttemptID,
		"replayed":   result.Replayed,
	})
}
