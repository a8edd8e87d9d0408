package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/craftbridge/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects requests whose declared content length exceeds
// maxBytes and caps streaming bodies at the same limit, so a missing
// Content-Length header cannot bypass it.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithRequestID(dto.ErrCodePayloadTooLarge,
					"Request body exceeds the allowed size", c.GetString(RequestIDKey)))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
