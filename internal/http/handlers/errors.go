package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/checkout"
	orderrepo "github.com/yungbote/storefront-backend/internal/data/repos/order"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/http/response"
	"github.com/yungbote/storefront-backend/internal/ledger"
	"github.com/yungbote/storefront-backend/internal/platform/apierr"
)

// respondDomainError maps the shared error taxonomy onto HTTP statuses.
// Checkout failures keep their specific reason in the payload.
func respondDomainError(c *gin.Context, err error) {
	response.RespondAPIError(c, classify(err))
}

func classify(err error) *apierr.Error {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var priceChanged *checkout.PriceChangedError
	var txFailed *checkout.TransactionError

	switch {
	case errors.Is(err, types.ErrNotFound):
		return apierr.New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, types.ErrConflict):
		return apierr.New(http.StatusConflict, "conflict", err)
	case errors.Is(err, types.ErrValidation):
		return apierr.New(http.StatusBadRequest, "validation", err)
	case errors.Is(err, orderrepo.ErrIllegalTransition):
		return apierr.New(http.StatusConflict, "illegal_transition", err)
	case errors.Is(err, checkout.ErrEmptyCart):
		return apierr.New(http.StatusUnprocessableEntity, "empty_cart", err)
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		return apierr.New(http.StatusConflict, "checkout_in_progress", err)
	case errors.Is(err, checkout.ErrAttemptRolledBack):
		return apierr.New(http.StatusConflict, "checkout_rolled_back", err)
	case errors.As(err, &priceChanged):
		return apierr.New(http.StatusConflict, "price_changed", err)
	case errors.As(err, &txFailed):
		return apierr.New(http.StatusInternalServerError, "checkout_transaction_failed", err)
	default:
		if _, ok := ledger.IsInsufficientStock(err); ok {
			return apierr.New(http.StatusConflict, "insufficient_stock", err)
		}
		return apierr.New(http.StatusInternalServerError, "internal", err)
	}
}
