package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderAdminKey carries the shared admin secret.
const HeaderAdminKey = "X-Admin-Key"

// AdminAuth admits requests whose X-Admin-Key equals secret exactly. Anything
// else, including an empty configured secret, is answered with 401.
func AdminAuth(secret string) gin.HandlerFunc {
	want := []byte(secret)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(HeaderAdminKey))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			LoggerFrom(c).Warn().Str("path", c.FullPath()).Msg("admin auth rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       codeUnauthorized,
				"message":    "Unauthorized",
			})
			return
		}
		c.Next()
	}
}
