package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/gin-gonic/gin"
)

type movementRequest struct {
	Barcode  string              `json:"barcode" binding:"required"`
	Type     models.MovementType `json:"type" binding:"required"`
	Quantity int                 `json:"quantity"`
	Reason   string              `json:"reason"`
}

type scanRequest struct {
	Barcode  string              `json:"barcode" binding:"required"`
	Type     models.MovementType `json:"type"`
	Quantity int                 `json:"quantity"`
	Reason   string              `json:"reason"`
}

func registerInventoryRoutes(rg *gin.RouterGroup, app *App) {
	inv := rg.Group("/inventory")
	inv.GET("/products", listItemsHandler(app))
	inv.POST("/products", createItemHandler(app))
	inv.GET("/products/low-stock", lowStockHandler(app))
	inv.GET("/transactions", listMovementsHandler(app))
	inv.POST("/movements", recordMovementHandler(app))

	scans := rg.Group("/scan-sessions")
	scans.POST("", openScanSessionHandler(app))
	scans.POST("/:id/scans", scanHandler(app))
	scans.POST("/:id/reset", resetScanSessionHandler(app))
	scans.DELETE("/:id", closeScanSessionHandler(app))
}

func listItemsHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("reload") == "1" {
			if err := app.Inventory.Load(c.Request.Context()); err != nil {
				respondError(c, err)
				return
			}
		}
		c.JSON(http.StatusOK, app.Inventory.Items())
	}
}

func lowStockHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, app.Inventory.LowStock())
	}
}

func createItemHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewInventoryItem
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		item, err := app.Inventory.CreateItem(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

func listMovementsHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, app.Inventory.Movements())
	}
}

func recordMovementHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req movementRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		item, err := app.Inventory.RecordMovement(c.Request.Context(), req.Barcode, req.Type, req.Quantity, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func openScanSessionHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusCreated, app.OpenScanSession())
	}
}

// scanHandler defaults to one unit IN per read.
func scanHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := app.ScanSession(c.Param("id"))
		if !ok {
			respondError(c, utils.NewNotFoundError("scan session", c.Param("id")))
			return
		}
		var req scanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		if req.Type == "" {
			req.Type = models.MovementTypeIn
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		if strings.TrimSpace(req.Reason) == "" {
			req.Reason = "scan"
		}
		item, err := session.Scan(c.Request.Context(), req.Barcode, req.Type, req.Quantity, req.Reason)
		if errors.Is(err, utils.ErrDuplicateScan) {
			c.JSON(http.StatusOK, gin.H{"suppressed": true, "barcode": strings.TrimSpace(req.Barcode)})
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"suppressed": false, "product": item})
	}
}

func resetScanSessionHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := app.ScanSession(c.Param("id"))
		if !ok {
			respondError(c, utils.NewNotFoundError("scan session", c.Param("id")))
			return
		}
		session.Reset()
		c.Status(http.StatusNoContent)
	}
}

func closeScanSessionHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !app.CloseScanSession(c.Param("id")) {
			respondError(c, utils.NewNotFoundError("scan session", c.Param("id")))
			return
		}
		c.Status(http.StatusNoContent)
	}
}
