package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimiter tracks per-client request counts over one-second windows.
type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientWindow
	rps     int
}

type clientWindow struct {
	count    int
	windowAt time.Time
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, ok := rl.clients[ip]
	if !ok || now.Sub(client.windowAt) > time.Second {
		rl.clients[ip] = &clientWindow{count: 1, windowAt: now}
		// Opportunistic cleanup keeps the map from growing unbounded.
		if len(rl.clients) > 10000 {
			for addr, cw := range rl.clients {
				if now.Sub(cw.windowAt) > time.Minute {
					delete(rl.clients, addr)
				}
			}
		}
		return true
	}
	if client.count >= rl.rps {
		return false
	}
	client.count++
	return true
}

// RateLimit returns a gin middleware limiting each client IP to rps requests
// per second. Applied to the public preference API, not to webhook routes.
func RateLimit(rps int) gin.HandlerFunc {
	limiter := &rateLimiter{clients: make(map[string]*clientWindow), rps: rps}

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
