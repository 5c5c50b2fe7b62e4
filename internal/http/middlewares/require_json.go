package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/courseapi/internal/apierr"
	"github.com/geocoder89/courseapi/internal/http/respond"
	"github.com/gin-gonic/gin"
)

const msgNotJSON = "Content-Type must be application/json"

func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := c.GetHeader("Content-Type")
			// allow "application/json; charset=utf-8"
			if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				respond.Abort(c, apierr.BadRequest(msgNotJSON))
				return
			}
		}
		c.Next()
	}
}
