package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// CORSConfig lists what cross-origin browsers may do. "*" in AllowOrigins
// admits any origin.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultCORSConfig admits any origin to the notes API and the event stream.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Accept", "Content-Type", "Last-Event-ID", HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID},
		MaxAge:        3600,
	}
}

// CORS sets the Access-Control headers and answers preflight requests
// with 204.
func CORS(config CORSConfig) gin.HandlerFunc {
	static := map[string]string{}
	if len(config.AllowMethods) > 0 {
		static["Access-Control-Allow-Methods"] = strings.Join(config.AllowMethods, ", ")
	}
	if len(config.AllowHeaders) > 0 {
		static["Access-Control-Allow-Headers"] = strings.Join(config.AllowHeaders, ", ")
	}
	if len(config.ExposeHeaders) > 0 {
		static["Access-Control-Expose-Headers"] = strings.Join(config.ExposeHeaders, ", ")
	}
	if config.AllowCredentials {
		static["Access-Control-Allow-Credentials"] = "true"
	}
	if config.MaxAge > 0 {
		static["Access-Control-Max-Age"] = strconv.Itoa(config.MaxAge)
	}
	anyOrigin := lo.Contains(config.AllowOrigins, "*")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case anyOrigin:
			c.Header("Access-Control-Allow-Origin", "*")
		case origin != "" && lo.Contains(config.AllowOrigins, origin):
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		for k, v := range static {
			c.Header(k, v)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
