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

type ReviewHandler struct {
	log     *logger.Logger
	service services.ReviewService
}

func NewReviewHandler(log *logger.Logger, service services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		log:     log.With("handler", "ReviewHandler"),
		service: service,
	}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var in services.CreateReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	created, err := h.service.Create(c.Request.Context(), nil, in)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondCreated(c, created)
}

func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	reviews, err := h.service.ListForProduct(c.Request.Context(), nil, productID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, reviews)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	var in struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	if err := h.service.Update(c.Request.Context(), nil, reviewID, in.Rating, in.Comment); err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated": true})
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	if err := h.service.Delete(c.Request.Context(), nil, reviewID); err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
