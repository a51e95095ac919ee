package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartSessionCookie = "cart_session"
	CartSessionHeader = "X-Cart-Session"
	ctxCartSession    = "cart_session"
)

// CartSession makes sure every request carries a cart session token, taken
// from the cookie, then from the X-Cart-Session header for clients without
// cookies, or minted on first use.
func CartSession(secure bool, maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := c.Cookie(CartSessionCookie)
		if err != nil || session == "" {
			session = c.GetHeader(CartSessionHeader)
		}
		if _, err := uuid.Parse(session); err != nil {
			session = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CartSessionCookie, session, maxAgeSeconds, "/", "", secure, true)
		c.Header(CartSessionHeader, session)
		c.Set(ctxCartSession, session)
		c.Next()
	}
}

func SessionID(c *gin.Context) string {
	return c.GetString(ctxCartSession)
}
