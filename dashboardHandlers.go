package main

import (
	"net/http"

	"github.com/balanoilmart/ledger_backend/dashboard"
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/gin-gonic/gin"
)

func registerDashboardRoutes(rg *gin.RouterGroup, app *App) {
	rg.GET("/dashboard", dashboardHandler(app))
	rg.GET("/notifications", listNotificationsHandler(app))
	rg.DELETE("/notifications/:id", dismissNotificationHandler(app))
}

func dashboardHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, dashboard.Summarize(
			app.Manufacturers.List(),
			app.Customers.List(),
			app.Sales.Entries(),
			app.Now(),
		))
	}
}

func listNotificationsHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, app.Notifications.List())
	}
}

func dismissNotificationHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !app.Notifications.Dismiss(c.Param("id")) {
			respondError(c, utils.NewNotFoundError("notification", c.Param("id")))
			return
		}
		c.Status(http.StatusNoContent)
	}
}
