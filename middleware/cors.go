package middleware

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the storefront origins to call the API.
// CORS_ORIGINS is a comma separated list; localhost is always allowed
// for development. X-Session-Id must be listed so anonymous carts work
// from the browser.
func CORSMiddleware() gin.HandlerFunc {
	allowedOrigins := []string{"http://localhost:5173"}
	for _, origin := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowedOrigins = append(allowedOrigins, origin)
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization", "X-Session-Id"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	})
}
