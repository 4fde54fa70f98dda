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

type UserHandler struct {
	log     *logger.Logger
	service services.UserService
}

func NewUserHandler(log *logger.Logger, service services.UserService) *UserHandler {
	return &UserHandler{
		log:     log.With("handler", "UserHandler"),
		service: service,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var in services.RegisterUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	created, err := h.service.Register(c.Request.Context(), nil, in)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondCreated(c, created)
}

func (h *UserHandler) Get(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	found, err := h.service.GetByID(c.Request.Context(), nil, userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, found)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	var in struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	if err := h.service.UpdateProfile(c.Request.Context(), nil, userID, in.FirstName, in.LastName); err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated": true})
}

func (h *UserHandler) Delete(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", types.ErrValidation)
		return
	}
	if err := h.service.Delete(c.Request.Context(), nil, userID); err != nil {
		respondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}
