package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"seatly/internal/shared/utils/response"
)

// Middleware enforces the budget for a limit type. Authenticated requests
// are keyed by user id, anonymous ones by client IP.
func (l *Limiter) Middleware(t LimitType) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.ClientIP()
		if userID, exists := c.Get("user_id"); exists {
			identity = userID.(string)
		}

		res := l.Allow(c.Request.Context(), identity, t)

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(res.ResetAfter.Seconds())))
			response.RespondJSON(c, "error", http.StatusTooManyRequests, "Rate limit exceeded", nil, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
