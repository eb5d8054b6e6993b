package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes used by the HTTP layer itself. Pipeline failures carry the
// code reported by pipeline.ErrorCode.
const (
	CodeInvalidRequest = "invalid_request"
	CodeValidation     = "validation_error"
	CodeInvalidName    = "invalid_filename"
	CodeNotFound       = "not_found"
	CodeInternal       = "internal_error"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
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

// RespondFieldError reports a request field that failed validation.
func RespondFieldError(c *gin.Context, field string, err error) {
	c.JSON(http.StatusBadRequest, ErrorEnvelope{
		Error: APIError{
			Message: err.Error(),
			Code:    CodeValidation,
			Field:   field,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
