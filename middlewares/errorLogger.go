package middlewares

import (
	"github.com/balanoilmart/ledger_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func ErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			ctx := c.Request.Context()
			cid, _ := utils.GetCorrelationIdFromContext(ctx)
			fields := logrus.Fields{
				"method":         c.Request.Method,
				"path":           c.FullPath(),
				"status":         c.Writer.Status(),
				"correlation_id": cid,
			}
			if sessionId, ok := utils.GetSessionIdFromContext(ctx); ok {
				fields["session_id"] = sessionId
			}
			if userName, ok := utils.GetUserNameFromContext(ctx); ok {
				fields["user_name"] = userName
			}
			logger.WithFields(fields).Error(c.Errors.String())
		}
	}
}
