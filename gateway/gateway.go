package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Abhinavraj53/Pujnam-Store/docs"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/apperr"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/config"
	"github.com/Abhinavraj53/Pujnam-Store/pkg/service"
)

// Services are the business services behind the HTTP routes.
type Services struct {
	Auth      *service.AuthService
	Catalog   *service.CatalogService
	Cart      *service.CartService
	Coupons   *service.CouponService
	Orders    *service.OrderService
	Settings  *service.SettingsService
	Content   *service.ContentService
	Customers *service.CustomerService
	Media     *service.MediaService
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Gateway struct {
	config   *config.Config
	services Services
	checks   map[string]Pinger
	logger   *zap.Logger
	router   *gin.Engine
	server   *http.Server
}

func NewGateway(cfg *config.Config, logger *zap.Logger, services Services, checks map[string]Pinger) *Gateway {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	registerValidatorNames()

	router := gin.New()
	router.Use(requestID())
	router.Use(loggerMiddleware(logger))
	router.Use(recovery(logger))
	router.Use(corsMiddleware(cfg.Server.AllowOrigins))

	g := &Gateway{
		config:   cfg,
		services: services,
		checks:   checks,
		logger:   logger.Named("gateway"),
		router:   router,
		server: &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
	g.SetupRoutes()
	return g
}

// Handler exposes the engine for httptest and custom servers.
func (g *Gateway) Handler() http.Handler {
	return g.router
}

func (g *Gateway) SetupRoutes() {
	g.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "Route not found", Code: apperr.CodeNotFound})
	})

	api := g.router.Group("/api")
	api.GET("/health", g.health)

	authed := g.requireUser()
	admin := g.requireAdmin()
	optional := g.optionalUser()

	orders := api.Group("/orders")
	{
		orders.POST("", optional, g.placeOrder)
		orders.GET("", authed, g.listMyOrders)
		orders.GET("/admin/all", admin, g.listAllOrders)
		orders.PUT("/admin/:id/status", admin, g.updateOrderStatus)
		orders.GET("/admin/:id/history", admin, g.orderHistory)
		orders.GET("/:id", authed, g.getMyOrder)
		orders.PUT("/:id/cancel", authed, g.cancelOrder)
	}

	coupons := api.Group("/coupons")
	{
		coupons.GET("/active", g.activeCoupons)
		coupons.POST("/validate", g.validateCoupon)
		coupons.GET("", admin, g.listCoupons)
		coupons.GET("/:id", admin, g.getCoupon)
		coupons.POST("", admin, g.createCoupon)
		coupons.PUT("/:id", admin, g.updateCoupon)
		coupons.DELETE("/:id", admin, g.deleteCoupon)
	}

	products := api.Group("/products")
	{
		products.GET("", g.listProducts)
		products.GET("/:id", g.getProduct)
		products.POST("", admin, g.createProduct)
		products.POST("/bulk", admin, g.bulkCreateProducts)
		products.PUT("/:id", admin, g.updateProduct)
		products.DELETE("/:id", admin, g.deleteProduct)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", g.listCategories)
		categories.GET("/:id", g.getCategory)
		categories.POST("", admin, g.createCategory)
		categories.PUT("/:id", admin, g.updateCategory)
		categories.DELETE("/:id", admin, g.deleteCategory)
	}

	cart := api.Group("/cart", authed)
	{
		cart.GET("", g.getCart)
		cart.POST("/add", g.addToCart)
		cart.PUT("/update", g.updateCart)
		cart.DELETE("/remove/:productId", g.removeFromCart)
		cart.DELETE("/clear", g.clearCart)
	}

	settings := api.Group("/settings")
	{
		settings.GET("", g.getSettings)
		settings.PUT("", admin, g.updateSettings)
	}

	g.authRoutes(api.Group("/auth"), authed)

	contentRoutes(api.Group("/banners"), g.services.Content.Banners, admin, contentKeys{one: "banner", many: "banners", label: "Banner"}, bannerQuery)
	contentRoutes(api.Group("/festivals"), g.services.Content.Festivals, admin, contentKeys{one: "festival", many: "festivals", label: "Festival"}, festivalQuery)
	contentRoutes(api.Group("/promo-blocks"), g.services.Content.PromoBlocks, admin, contentKeys{one: "block", many: "blocks", label: "Promo block"}, activeQuery)
	contentRoutes(api.Group("/section-videos"), g.services.Content.SectionVideos, admin, contentKeys{one: "video", many: "videos", label: "Video", created: "Video added"}, activeQuery)

	customers := api.Group("/customers", admin)
	{
		customers.GET("", g.listCustomers)
		customers.GET("/:id", g.getCustomer)
	}

	upload := api.Group("/upload")
	{
		upload.POST("/image", admin, g.uploadImage)
		upload.POST("/images", admin, g.uploadImages)
		upload.POST("/video", admin, g.uploadVideo)
		upload.GET("/files/:id", g.serveFile)
	}

	// Swagger
	g.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// Start serves HTTP until Shutdown is called.
func (g *Gateway) Start() error {
	g.logger.Info("Gateway starting", zap.String("address", g.server.Addr))
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

// health godoc
// @Summary Liveness and datastore reachability
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /health [get]
func (g *Gateway) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for name, p := range g.checks {
		if err := p.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			deps[name] = err.Error()
			continue
		}
		deps[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "dependencies": deps, "time": time.Now().UTC()})
}
