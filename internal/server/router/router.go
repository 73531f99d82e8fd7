package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/StockmansWallet/StockmansWallet-sub006/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(
	portfolio *handlers.PortfolioHandler,
	herd *handlers.HerdHandler,
	settings *handlers.SettingsHandler,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	api.GET("/portfolio", portfolio.GetPortfolio)
	api.GET("/portfolio/history", portfolio.GetHistory)
	api.GET("/portfolio/snapshots", portfolio.GetSnapshots)
	api.POST("/calving/run", portfolio.RunCalving)

	api.GET("/groups", herd.ListGroups)
	api.POST("/groups", herd.CreateGroup)
	api.GET("/groups/:id", herd.GetGroup)
	api.PUT("/groups/:id", herd.UpdateGroup)
	api.GET("/groups/:id/valuation", herd.GetValuation)
	api.POST("/groups/:id/sale", herd.SellGroup)

	api.GET("/costs", settings.GetCostProfile)
	api.PUT("/costs", settings.PutCostProfile)
	api.POST("/prices/sync", settings.RunPriceSync)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
