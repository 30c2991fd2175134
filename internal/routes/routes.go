package routes

import (
	"os"
	"strconv"
	"strings"

	"launchcontrol/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Any("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})

	// CORS: allow only origins listed in ALLOWED_ORIGINS (comma-separated).
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		var allowedOrigins []string
		if s := os.Getenv("ALLOWED_ORIGINS"); s != "" {
			for _, o := range strings.Split(s, ",") {
				if trimmed := strings.TrimSpace(o); trimmed != "" {
					allowedOrigins = append(allowedOrigins, trimmed)
				}
			}
		}

		for _, allowed := range allowedOrigins {
			if origin == allowed {
				c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, Origin, Cache-Control, X-Requested-With, X-User-ID, X-Wallet-Address, X-Idempotency-Key")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.Use(middleware.RateLimiterMiddleware(rateLimiterConfigFromEnv()))

	// Setup routes for each module
	SetupRoundRoutes(r)
	SetupContributionRoutes(r)
	SetupVestingRoutes(r)
	SetupRefundRoutes(r)
	SetupReferralRoutes(r)

	return r
}

// rateLimiterConfigFromEnv reads RATE_LIMIT_RPS / RATE_LIMIT_BURST, with
// defaults sized for a small public API.
func rateLimiterConfigFromEnv() middleware.RateLimiterConfig {
	cfg := middleware.RateLimiterConfig{
		RequestsPerSecond: 20,
		Burst:             40,
	}
	if s := os.Getenv("RATE_LIMIT_RPS"); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil && v > 0 {
			cfg.RequestsPerSecond = v
		}
	}
	if s := os.Getenv("RATE_LIMIT_BURST"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			cfg.Burst = v
		}
	}
	return cfg
}
