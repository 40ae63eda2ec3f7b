package middlewares

import (
	"strings"

	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/gin-gonic/gin"
)

const (
	sessionIdHeader = "x-session-id"
	userNameHeader  = "x-user-name"
)

// SessionMiddleware copies the browser session id and staff name into the request context.
// These are labels for logs and traces, not credentials.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if sessionId := strings.TrimSpace(c.GetHeader(sessionIdHeader)); sessionId != "" {
			ctx = utils.SetSessionIdInContext(ctx, sessionId)
		}
		if userName := strings.TrimSpace(c.GetHeader(userNameHeader)); userName != "" {
			ctx = utils.SetUserNameInContext(ctx, userName)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
