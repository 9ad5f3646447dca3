package middleware

import (
	"log/slog"
	"net/http"

	"booking-engine/internal/handler/httperr"
	"booking-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

var errNoResponse = errs.New("handler returned without writing a response")

// ErrorHandler renders what a handler left unwritten. Public errors carry
// their response in Meta; any other error pushed with c.Error is mapped
// through the domain error kinds.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		for i := len(c.Errors) - 1; i >= 0; i-- {
			err := c.Errors[i]
			if !err.IsType(gin.ErrorTypePublic) {
				continue
			}
			if resp, ok := err.Meta.(httperr.Response); ok {
				c.JSON(resp.Status, resp)
				return
			}
		}
		if last := c.Errors.Last(); last != nil {
			renderError(c, last.Err)
			return
		}
		if status := c.Writer.Status(); status != http.StatusOK {
			c.Status(status)
			c.Writer.WriteHeaderNow()
			return
		}
		renderError(c, errNoResponse)
	}
}

func renderError(c *gin.Context, err error) {
	status := httperr.Status(err)
	resp := httperr.Response{Status: status}
	if status < http.StatusInternalServerError {
		resp.Error.Message = err.Error()
	} else {
		resp.Error.Message = http.StatusText(status)
		slog.Error("unrendered request error",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", status,
			"error", err.Error())
	}
	c.JSON(status, resp)
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("recovered from panic", "error", err, "route", c.FullPath(), "path", c.Request.URL.Path)

				resp := httperr.Response{Status: http.StatusInternalServerError}
				resp.Error.Message = "Internal server error"

				c.JSON(http.StatusInternalServerError, resp)
				c.Abort()
			}
		}()
		c.Next()
	}
}
