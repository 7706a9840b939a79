package handler

import (
	"net/http"

	"contable/internal/service"
	"contable/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeError maps service error codes onto HTTP statuses and emits the
// standard error envelope.
func writeError(c *gin.Context, err error) {
	code := service.ErrorCode(err)

	status := http.StatusInternalServerError
	switch code {
	case service.CodeValidationError:
		status = http.StatusBadRequest
	case service.CodeNotFound:
		status = http.StatusNotFound
	case service.CodeConflict:
		status = http.StatusConflict
	case service.CodeUnauthorized:
		status = http.StatusUnauthorized
	case service.CodeDBNotConfigured:
		status = http.StatusPreconditionFailed
	}

	c.JSON(status, response.ErrorCoded(status, code, err.Error()))
}
