package middleware

import (
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/yungbote/chatgraph-backend/internal/clients/redis"
  "github.com/yungbote/chatgraph-backend/internal/logger"
  "github.com/yungbote/chatgraph-backend/internal/requestdata"
)

type RateLimitMiddleware struct {
  log       *logger.Logger
  limiter   redis.RateLimiter
}

func NewRateLimitMiddleware(log *logger.Logger, limiter redis.RateLimiter) *RateLimitMiddleware {
  middlewareLogger := log.With("Middleware", "RateLimitMiddleware")
  return &RateLimitMiddleware{log: middlewareLogger, limiter: limiter}
}

// Limit keys on the authenticated user when available, client IP otherwise.
// Limiter errors fail open, redis going down should not take requests with it.
func (rm *RateLimitMiddleware) Limit() gin.HandlerFunc {
  return func(c *gin.Context) {
    key := c.ClientIP()
    if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
      key = rd.UserID.String()
    }
    allowed, err := rm.limiter.Allow(c.Request.Context(), key)
    if err != nil {
      rm.log.Warn("Rate limiter check failed, allowing request", "error", err)
      c.Next()
      return
    }
    if !allowed {
      c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
      return
    }
    c.Next()
  }
}
