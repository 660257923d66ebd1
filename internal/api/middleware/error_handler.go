package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"voicenotes/internal/api/errors"
)

// ErrorHandler recovers panics and answers with an internal APIError.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString(RequestIDKey)

		if apiErr, ok := recovered.(*errors.APIError); ok {
			apiErr.RequestID = requestID
			c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
			return
		}

		logger.Error("Recovered from panic",
			zap.Any("recovered", recovered),
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)

		c.AbortWithStatusJSON(500, &errors.APIError{
			Kind:      errors.KindInternal,
			Message:   "Internal server error",
			RequestID: requestID,
		})
	})
}

// HandleError writes err as an APIError response. resource names the
// entity in not-found and conflict messages. The original error is
// attached to the gin context so the logging middleware records it.
func HandleError(c *gin.Context, err error, resource string) {
	if err == nil {
		return
	}

	apiErr := errors.FromError(err, resource)
	if apiErr.Kind == errors.KindInternal || apiErr.Kind == errors.KindServiceUnavailable {
		_ = c.Error(err)
	}
	apiErr.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}
