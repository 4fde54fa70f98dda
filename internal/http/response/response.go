package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError renders a classified API error. A nil error falls back to
// a bare 500 so callers never panic on a missing classification.
func RespondAPIError(c *gin.Context, apiErr *apierr.Error) {
	if apiErr == nil {
		RespondError(c, http.StatusInternalServerError, "internal", nil)
		return
	}
	status := apiErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	RespondError(c, status, apiErr.Code, apiErr)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
