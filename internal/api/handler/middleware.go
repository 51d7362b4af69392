package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS applies the fixed cross-origin contract: every response carries a
// wildcard allow-origin, and preflight requests short-circuit to 200 with
// the allowed methods and headers.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		if c.Request.Method == http.MethodOptions {
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, X-Session-Token")
			c.Header("Access-Control-Max-Age", "86400")
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func logError(c *gin.Context, err error) {
	log.Printf("ERROR: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
}
