package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docchat-relay/internal/pkg/requestid"
)

const ContextRequestIDKey = "request_id"

const maxRequestIDLength = 128

// RequestID reuses a caller supplied X-Request-ID or assigns a new UUID, echoes
// it on the response and stores it in the request context for outbound calls.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestid.Header)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(ContextRequestIDKey, id)
		c.Header(requestid.Header, id)
		c.Request = c.Request.WithContext(requestid.WithContext(c.Request.Context(), id))
		c.Next()
	}
}
