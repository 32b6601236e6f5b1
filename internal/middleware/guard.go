package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"elretiro/console/internal/guard"
)

// Guard runs the navigation rule on every page load and redirects when the
// session and the requested group disagree.
func Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, present := CurrentSession(c)
		path := c.Request.URL.Path

		decision := guard.Decide(present, guard.SegmentOf(path))
		if decision.Redirects(path) {
			c.Redirect(http.StatusFound, decision.Target)
			c.Abort()
			return
		}

		c.Next()
	}
}
