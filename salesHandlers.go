package main

import (
	"net/http"
	"time"

	"github.com/balanoilmart/ledger_backend/sales"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/gin-gonic/gin"
)

// Total is accepted for compatibility with older clients and ignored.
type createSaleRequest struct {
	ProductName string `json:"productName" binding:"required"`
	Quantity    any    `json:"quantity" binding:"required"`
	Price       any    `json:"price" binding:"required"`
	Total       any    `json:"total"`
	Date        string `json:"date"`
}

func registerSalesRoutes(rg *gin.RouterGroup, app *App) {
	rg.GET("/sales", listSalesHandler(app))
	rg.POST("/sales", createSaleHandler(app))
	rg.GET("/sales/summary", salesSummaryHandler(app))
}

func listSalesHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("reload") == "1" {
			if err := app.Sales.Load(c.Request.Context()); err != nil {
				respondError(c, err)
				return
			}
		}
		c.JSON(http.StatusOK, app.Sales.Entries())
	}
}

func createSaleHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createSaleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		quantity, err := utils.ParseAmount("quantity", req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		price, err := utils.ParseAmount("price", req.Price)
		if err != nil {
			respondError(c, err)
			return
		}
		var date time.Time
		if req.Date != "" {
			date, err = utils.ParseDate(req.Date, app.Location)
			if err != nil {
				respondError(c, utils.NewValidationError("date", "%s", err.Error()))
				return
			}
		}
		sale, err := app.Sales.RecordSale(c.Request.Context(), req.ProductName, quantity, price, date)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, sale)
	}
}

func salesSummaryHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := app.Sales.Entries()
		c.JSON(http.StatusOK, gin.H{
			"byProduct":   sales.Distribution(entries),
			"monthToDate": app.Sales.MonthToDate(),
			"total":       sales.Total(entries),
		})
	}
}
