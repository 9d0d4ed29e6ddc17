package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/MikeMC777/decor-ecom/docs"
	"github.com/MikeMC777/decor-ecom/internal/auth"
	"github.com/MikeMC777/decor-ecom/internal/cart"
	"github.com/MikeMC777/decor-ecom/internal/config"
	"github.com/MikeMC777/decor-ecom/internal/coupon"
	"github.com/MikeMC777/decor-ecom/internal/health"
	"github.com/MikeMC777/decor-ecom/internal/httpx"
	"github.com/MikeMC777/decor-ecom/internal/module"
	"github.com/MikeMC777/decor-ecom/internal/order"
	"github.com/MikeMC777/decor-ecom/internal/platform/mongodb"
	"github.com/MikeMC777/decor-ecom/internal/platform/postgres"
	"github.com/MikeMC777/decor-ecom/internal/pricing"
	"github.com/MikeMC777/decor-ecom/internal/session"
)

type deps struct {
	carts    *cart.Service
	orders   order.Repository
	placer   *order.Service
	catalog  order.Catalog
	coupons  coupon.Repository
	shipping pricing.ShippingRule
	now      func() time.Time
}

func shippingRule(cfg config.Config) pricing.ShippingRule {
	rule := pricing.DefaultShipping()
	if v, err := decimal.NewFromString(cfg.ShippingFlatFee); err == nil {
		rule.FlatFee = v
	} else {
		log.Printf("[config] SHIPPING_FLAT_FEE=%q is not a number, using %s", cfg.ShippingFlatFee, rule.FlatFee)
	}
	if v, err := decimal.NewFromString(cfg.FreeShippingThreshold); err == nil {
		rule.FreeAbove = v
	} else {
		log.Printf("[config] FREE_SHIPPING_THRESHOLD=%q is not a number, using %s", cfg.FreeShippingThreshold, rule.FreeAbove)
	}
	return rule
}

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer mongodb.Disconnect(db)

	cartRepo := cart.NewMongoRepo(db)
	orderRepo := order.NewMongoRepo(db)
	if err := cartRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("cart indexes: %v", err)
	}
	if err := orderRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("order indexes: %v", err)
	}

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PGMaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	coupons := coupon.NewPGRepo(pool)

	sessions, err := session.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer sessions.Close()
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	verifier := &auth.Verifier{Issuer: issuer, Sessions: sessions}
	enforcer, err := auth.NewEnforcer(auth.DefaultPolicies())
	if err != nil {
		log.Fatalf("rbac: %v", err)
	}

	ext := order.NewExt(cfg.ProductSvcBaseURL, cfg.ProductSvcGRPC, func() (string, error) {
		return issuer.IssueService("order-service")
	})
	readyCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := ext.Ready(readyCtx); err != nil {
		log.Printf("[order] product-service not ready yet: %v", err)
	}
	cancel()

	rule := shippingRule(cfg)
	d := deps{
		carts:    cart.NewService(cartRepo),
		orders:   orderRepo,
		placer:   order.NewService(orderRepo, ext, coupons, rule),
		catalog:  ext,
		coupons:  coupons,
		shipping: rule,
		now:      time.Now,
	}

	httpx.RegisterValidators()
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), httpx.BodyLimit(1<<20))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.OrderInstance)))
	registerRoutes(r, d, auth.Authenticate(verifier), auth.Authorize(enforcer))

	hs := health.NewServer()
	go func() {
		if err := hs.Serve(ctx, cfg.OrderSvcGRPCAddr); err != nil {
			log.Printf("[health] %v", err)
		}
	}()
	hs.SetServing("", true)

	if err := httpx.Serve(ctx, "order-service", cfg.OrderSvcAddr, r); err != nil {
		log.Fatalf("http: %v", err)
	}
}

// ordersListPath keeps the service module's historic list path.
func ordersListPath(m module.Module) string {
	if m == module.Service {
		return "/orders/json"
	}
	return "/orders"
}

// registerRoutes mounts carts, orders and coupons. Storefront calls are
// public; back-office calls go through guard.
func registerRoutes(r gin.IRouter, d deps, guard ...gin.HandlerFunc) {
	api := r.Group("/api")
	api.GET("/cart/:ownerId", getCartHandler(d))
	api.DELETE("/cart/:ownerId", clearCartHandler(d))
	api.POST("/cart/:ownerId/items", addCartItemHandler(d))
	api.PATCH("/cart/:ownerId/items/:productId", setCartQuantityHandler(d))
	api.DELETE("/cart/:ownerId/items/:productId", removeCartItemHandler(d))
	api.POST("/checkout", checkoutHandler(d))
	api.GET("/orders/customer/:customerId", customerOrdersHandler(d.orders))
	api.POST("/coupons/validate", validateCouponHandler(d.coupons, d.shipping, d.now))

	admin := api.Group("", guard...)
	admin.GET("/vendor/orders", vendorOrdersHandler(d.orders))
	admin.GET("/coupons", listCouponsHandler(d.coupons, d.now))
	admin.POST("/coupons", createCouponHandler(d.coupons))
	admin.GET("/coupons/:id", getCouponHandler(d.coupons))
	admin.PUT("/coupons/:id", updateCouponHandler(d.coupons))
	admin.DELETE("/coupons/:id", deleteCouponHandler(d.coupons))

	for _, m := range module.All {
		g := r.Group(m.Prefix())
		g.POST("/orders", createOrderHandler(d.placer, m))
		g.GET("/orders/statuses", statusesHandler(m))

		w := g.Group("", guard...)
		w.GET(ordersListPath(m), listOrdersHandler(d.orders, m))
		w.GET("/orders/:id", getOrderHandler(d.orders, m))
		w.PUT("/orders/:id/status", setStatusHandler(d.orders, d.placer, m))
		w.PUT("/orders/:id/vendor", assignVendorHandler(d.orders, m))
	}
}
