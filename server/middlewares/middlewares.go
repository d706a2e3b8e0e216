package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	Logger "github.com/eventatlas/portalfeed/utils/log"
)

// RequestIdHeader carries the request id back to the client and onward to
// any upstream that re-enters this service.
const RequestIdHeader = "X-Request-Id"

const requestIdKey = "request_id"

// RequestId tags every request with an id, honoring one supplied by the
// caller so ids stay stable across proxies.
func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIdHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIdKey, id)
		c.Writer.Header().Set(RequestIdHeader, id)
		c.Next()
	}
}

// RequestLogger writes one structured line per request after it finishes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		Logger.Log.WithFields(logrus.Fields{
			"request_id": c.GetString(requestIdKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("request handled")
	}
}
