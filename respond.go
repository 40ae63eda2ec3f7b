package main

import (
	"errors"
	"net/http"

	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// respondError maps the error taxonomy to HTTP status codes.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case utils.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": utils.ProcessValidationErrors(err)})
	case utils.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case utils.IsTransportError(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func respondBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
}

// optionalAmount treats a missing value as zero.
func optionalAmount(field string, v any) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, nil
	}
	return utils.ParseAmount(field, v)
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}
