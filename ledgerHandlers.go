package main

import (
	"net/http"

	"github.com/balanoilmart/ledger_backend/ledger"
	"github.com/balanoilmart/ledger_backend/models"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/gin-gonic/gin"
)

type createAccountRequest struct {
	Name        string `json:"name" binding:"required"`
	CreditGiven any    `json:"creditGiven"`
	PaidAmount  any    `json:"paidAmount"`
	Product     string `json:"product"`
}

type entryRequest struct {
	Amount any    `json:"amount" binding:"required"`
	Note   string `json:"note"`
}

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

type addProductRequest struct {
	Name     string `json:"name" binding:"required"`
	Quantity any    `json:"quantity" binding:"required"`
	Rate     any    `json:"rate" binding:"required"`
}

func registerLedgerRoutes(rg *gin.RouterGroup, app *App, kind models.AccountKind) {
	g := rg.Group("/" + kind.ResourceName())
	g.GET("", listAccountsHandler(app, kind))
	g.POST("", createAccountHandler(app, kind))
	g.GET("/:id", getAccountHandler(app, kind))
	g.PATCH("/:id", renameAccountHandler(app, kind))
	g.POST("/:id/add-credit", addEntryHandler(app, kind, models.EntryKindCredit))
	g.POST("/:id/add-payment", addEntryHandler(app, kind, models.EntryKindPayment))
	if kind == models.AccountKindManufacturer {
		g.POST("/:id/add-product", addProductHandler(app))
	}
}

func listAccountsHandler(app *App, kind models.AccountKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := app.manager(kind)
		if c.Query("reload") == "1" {
			if err := m.Load(c.Request.Context()); err != nil {
				respondError(c, err)
				return
			}
		}
		c.JSON(http.StatusOK, m.List())
	}
}

func createAccountHandler(app *App, kind models.AccountKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		credit, err := optionalAmount("creditGiven", req.CreditGiven)
		if err != nil {
			respondError(c, err)
			return
		}
		paid, err := optionalAmount("paidAmount", req.PaidAmount)
		if err != nil {
			respondError(c, err)
			return
		}
		account, err := app.manager(kind).FindOrCreate(c.Request.Context(), &models.NewLedgerAccount{
			Name:        req.Name,
			CreditGiven: credit,
			PaidAmount:  paid,
			Product:     req.Product,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

func getAccountHandler(app *App, kind models.AccountKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := app.manager(kind).Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		resp := gin.H{"account": account}
		if kind == models.AccountKindManufacturer {
			resp["productTotals"] = ledger.ProductTotals(account)
		}
		c.JSON(http.StatusOK, resp)
	}
}

func renameAccountHandler(app *App, kind models.AccountKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req renameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		account, err := app.manager(kind).Rename(c.Param("id"), req.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

func addEntryHandler(app *App, kind models.AccountKind, entryKind models.EntryKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req entryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		amount, err := utils.ParseAmount("amount", req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		m := app.manager(kind)
		var account *models.LedgerAccount
		if entryKind == models.EntryKindCredit {
			account, err = m.AddCredit(c.Request.Context(), c.Param("id"), amount, req.Note)
		} else {
			account, err = m.AddPayment(c.Request.Context(), c.Param("id"), amount, req.Note)
		}
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

func addProductHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		quantity, err := utils.ParseAmount("quantity", req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		rate, err := utils.ParseAmount("rate", req.Rate)
		if err != nil {
			respondError(c, err)
			return
		}
		account, err := app.Manufacturers.AddProduct(c.Request.Context(), c.Param("id"), req.Name, quantity, rate)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"account": account, "productTotals": ledger.ProductTotals(account)})
	}
}
