package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/cohortly/cohortly/internal/types"
)

// RequestIDMiddleware assigns each request a unique id, honoring an inbound
// X-Request-ID when present, and reflects it on the response.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateID(types.IDPrefixRequest)
	}

	ctx := context.WithValue(c.Request.Context(), types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Writer.Header().Set(types.HeaderRequestID, requestID)

	c.Next()
}
