package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session and context keys shared with the handlers.
const (
	SessionTokenKey = "token"
	ClaimsKey       = "claims"
)

// RequireAdmin redirects to /login unless the session carries a valid admin token.
func RequireAdmin(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		tokenStr, _ := session.Get(SessionTokenKey).(string)
		if tokenStr == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil || claims.Role != RoleAdmin {
			session.Delete(SessionTokenKey)
			_ = session.Save()
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// CurrentClaims returns the claims placed by RequireAdmin.
func CurrentClaims(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}
