package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/govpilot/backend/internal/repository"
	"github.com/govpilot/backend/internal/service/clarify"
	"github.com/govpilot/backend/internal/service/statemachine"
)

// writeError 统一的错误响应映射
func writeError(c *gin.Context, err error) {
	var invalid *statemachine.InvalidTransitionError
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, clarify.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
