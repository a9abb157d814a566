package middleware

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/logger"
)

// ErrorHandlerMiddleware renders errors attached via c.Error into the uniform
// envelope, mapping the error's mark to an HTTP status. Handlers only call
// c.Error(err) and return.
func ErrorHandlerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := ierr.HTTPStatusFromErr(err)
		if status >= 500 {
			log.Errorw("request failed",
				"path", c.Request.URL.Path,
				"error", err)
		}

		c.JSON(status, ierr.NewErrorResponse(err))
	}
}
