package middleware

import (
	"net/http"

	"github.com/cvassistant/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyTooLargeMessage is returned when a request exceeds the body limit
const BodyTooLargeMessage = "Request body exceeds maximum allowed size"

// BodyLimit rejects requests declaring more than maxBytes and caps streamed bodies.
// A non-positive maxBytes disables the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(BodyTooLargeMessage))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
