package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/MikeMC777/decor-ecom/docs"
	"github.com/MikeMC777/decor-ecom/internal/auth"
	"github.com/MikeMC777/decor-ecom/internal/config"
	"github.com/MikeMC777/decor-ecom/internal/health"
	"github.com/MikeMC777/decor-ecom/internal/httpx"
	"github.com/MikeMC777/decor-ecom/internal/platform/postgres"
	"github.com/MikeMC777/decor-ecom/internal/session"
	"github.com/MikeMC777/decor-ecom/internal/vendor"
)

type deps struct {
	verifier *auth.Verifier
	admin    *auth.AdminAccount
	vendors  *vendor.Service
}

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PGMaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	sessions, err := session.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer sessions.Close()
	enforcer, err := auth.NewEnforcer(auth.DefaultPolicies())
	if err != nil {
		log.Fatalf("rbac: %v", err)
	}

	admin, err := auth.NewAdminAccount(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("admin account: %v", err)
	}
	if admin == nil {
		log.Printf("[auth] ADMIN_PASSWORD_HASH and ADMIN_PASSWORD are unset; admin login disabled")
	}

	d := deps{
		verifier: &auth.Verifier{Issuer: auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), Sessions: sessions},
		admin:    admin,
		vendors:  vendor.NewService(vendor.NewPGRepo(pool)),
	}

	httpx.RegisterValidators()
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), httpx.BodyLimit(1<<20))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.UserInstance)))
	registerRoutes(r, d, auth.Authenticate(d.verifier), auth.Authorize(enforcer))

	hs := health.NewServer()
	go func() {
		if err := hs.Serve(ctx, cfg.UserSvcGRPCAddr); err != nil {
			log.Printf("[health] %v", err)
		}
	}()
	hs.SetServing("", true)

	if err := httpx.Serve(ctx, "user-service", cfg.UserSvcAddr, r); err != nil {
		log.Fatalf("http: %v", err)
	}
}

func registerRoutes(r gin.IRouter, d deps, guard ...gin.HandlerFunc) {
	api := r.Group("/api")
	api.POST("/admin/auth/login", adminLoginHandler(d))
	api.POST("/vendor/auth/login", vendorLoginHandler(d))
	api.GET("/venues", venuesHandler(d.vendors))

	w := api.Group("", guard...)
	w.GET("/admin/auth/verify", verifyHandler(auth.RoleAdmin))
	w.POST("/admin/auth/logout", logoutHandler(d.verifier))
	w.GET("/vendor/auth/verify", verifyHandler(auth.RoleVendor))
	w.POST("/vendor/auth/logout", logoutHandler(d.verifier))

	w.GET("/admin/vendors", listVendorsHandler(d.vendors))
	w.POST("/admin/vendors", createVendorHandler(d.vendors))
	w.GET("/admin/vendors/:id", getVendorHandler(d.vendors))
	w.PUT("/admin/vendors/:id", updateVendorHandler(d.vendors))
	w.DELETE("/admin/vendors/:id", deleteVendorHandler(d.vendors))
}
