package middleware

import (
	"strings"

	"shopmart/config"

	"github.com/gin-gonic/gin"
)

// LocaleMiddleware resolves the request locale once, from ?lang= or the
// Accept-Language header, and stores it on the context. Handlers read it
// with GetLocale and pass it down explicitly.
func LocaleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := c.Query("lang")
		if locale == "" {
			if header := c.GetHeader("Accept-Language"); header != "" {
				first := strings.Split(header, ",")[0]
				locale = strings.TrimSpace(strings.Split(first, ";")[0])
				if idx := strings.Index(locale, "-"); idx > 0 {
					locale = locale[:idx]
				}
			}
		}
		if locale == "" {
			locale = config.AppConfig.DefaultLocale
		}

		c.Set("locale", strings.ToLower(locale))
		c.Next()
	}
}

func GetLocale(c *gin.Context) string {
	if locale, exists := c.Get("locale"); exists {
		if s, ok := locale.(string); ok {
			return s
		}
	}
	return config.AppConfig.DefaultLocale
}
