package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"agora/internal/handler/api"
	"agora/internal/handler/middleware"
	"agora/internal/pkg/config"
	"agora/internal/usecase/queries"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(engine *gin.Engine, cfg config.Config, orderHandler *api.OrderHandler, stockHandler *api.StockHandler, authMiddleware *middleware.AuthMiddleware) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, orderHandler, stockHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(cfg.Log))
	engine.Use(middleware.PrometheusMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, orderHandler *api.OrderHandler, stockHandler *api.StockHandler, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		orders := apiGroup.Group("/orders")
		orders.Use(authMiddleware.RequireAuth())
		{
			addRoutes(orders, []route{
				{Method: http.MethodPost, Path: "/checkout", Handler: orderHandler.Checkout},
				{Method: http.MethodGet, Path: "", Handler: orderHandler.ListOrders},
				{Method: http.MethodGet, Path: "/search", Handler: orderHandler.SearchOrders},
				{Method: http.MethodGet, Path: "/:orderNumber", Handler: orderHandler.GetOrder},
				{Method: http.MethodPost, Path: "/:orderNumber/confirm", Handler: orderHandler.Confirm},
				{Method: http.MethodPost, Path: "/:orderNumber/redo", Handler: orderHandler.Redo},
				{Method: http.MethodDelete, Path: "/:orderNumber", Handler: orderHandler.Cancel},
			})
		}

		seller := apiGroup.Group("/seller/orders")
		seller.Use(authMiddleware.RequireAuth())
		seller.Use(authMiddleware.RequireRole(queries.RoleSeller))
		{
			addRoutes(seller, []route{
				{Method: http.MethodGet, Path: "", Handler: orderHandler.ListSellerOrders},
				{Method: http.MethodPatch, Path: "/:orderNumber/status", Handler: orderHandler.UpdateStatus},
			})
		}
	}

	// Service-to-service ledger surface; the gateway never routes here.
	internalGroup := engine.Group("/internal/stock")
	{
		addRoutes(internalGroup, []route{
			{Method: http.MethodPost, Path: "/reserve", Handler: stockHandler.Reserve},
			{Method: http.MethodPost, Path: "/release", Handler: stockHandler.Release},
			{Method: http.MethodPost, Path: "/commit/:orderNumber", Handler: stockHandler.Commit},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
