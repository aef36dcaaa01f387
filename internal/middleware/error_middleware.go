package middleware

import (
	"ondot-chat/internal/transport/httpdto"
	ondot_errors "ondot-chat/pkg/errors"
	"ondot-chat/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error attached with c.Error when the
// handler did not write a response itself.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		if l != nil && ondot_errors.Kind(err) == ondot_errors.KindInternal {
			l.WithContext(c.Request.Context()).Error("request failed", zap.Error(err))
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(ondot_errors.HTTPStatus(err), httpdto.FromError(err))
	}
}
