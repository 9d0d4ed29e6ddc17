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
	"github.com/MikeMC777/decor-ecom/internal/catalog"
	"github.com/MikeMC777/decor-ecom/internal/config"
	"github.com/MikeMC777/decor-ecom/internal/health"
	"github.com/MikeMC777/decor-ecom/internal/httpx"
	"github.com/MikeMC777/decor-ecom/internal/media"
	"github.com/MikeMC777/decor-ecom/internal/module"
	"github.com/MikeMC777/decor-ecom/internal/platform/postgres"
	"github.com/MikeMC777/decor-ecom/internal/product"
	"github.com/MikeMC777/decor-ecom/internal/session"
)

type deps struct {
	categories    catalog.Repository
	products      product.Repository
	media         *media.Store
	imageRequired bool
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
	verifier := &auth.Verifier{Issuer: auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL), Sessions: sessions}
	enforcer, err := auth.NewEnforcer(auth.DefaultPolicies())
	if err != nil {
		log.Fatalf("rbac: %v", err)
	}

	store, err := media.NewStore(cfg.UploadDir, "/uploads")
	if err != nil {
		log.Fatalf("media: %v", err)
	}

	d := deps{
		categories:    catalog.NewPGRepo(pool),
		products:      product.NewPGRepo(pool),
		media:         store,
		imageRequired: cfg.CategoryImageRequired,
	}

	httpx.RegisterValidators()
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(), httpx.BodyLimit(int64(cfg.MaxUploadMB)<<20))
	r.MaxMultipartMemory = 8 << 20
	r.Static("/uploads", cfg.UploadDir)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.ProductInstance)))

	admin := []gin.HandlerFunc{auth.Authenticate(verifier), auth.Authorize(enforcer)}
	for _, m := range module.All {
		registerRoutes(r.Group(m.Prefix()), m, d, admin...)
	}

	hs := health.NewServer()
	go func() {
		if err := hs.Serve(ctx, cfg.ProductSvcGRPCAddr); err != nil {
			log.Printf("[health] %v", err)
		}
	}()
	hs.SetServing("", true)

	if err := httpx.Serve(ctx, "product-service", cfg.ProductSvcAddr, r); err != nil {
		log.Fatalf("http: %v", err)
	}
}

// registerRoutes mounts one module's catalog under g. Reads are public;
// writes go through guard.
func registerRoutes(g *gin.RouterGroup, m module.Module, d deps, guard ...gin.HandlerFunc) {
	g.GET("/categories", listCategoriesHandler(d.categories, m))
	g.GET("/categories/:id", getCategoryHandler(d.categories, m))
	g.GET("/categories/:id/subcategories", listSubCategoriesHandler(d.categories, m))
	g.GET("/subcategories/:id", getSubCategoryHandler(d.categories, m))
	g.GET("/products", listProductsHandler(d.products, m))
	g.GET("/products/:id", getProductHandler(d.products, m))

	w := g.Group("", guard...)
	w.POST("/categories", createCategoryHandler(d.categories, d.media, m, d.imageRequired))
	w.PUT("/categories/reorder", reorderCategoriesHandler(d.categories, m))
	w.PUT("/categories/:id", updateCategoryHandler(d.categories, d.media, m))
	w.PATCH("/categories/:id/active", setCategoryActiveHandler(d.categories, m))
	w.DELETE("/categories/:id", deleteCategoryHandler(d.categories, m))

	w.POST("/categories/:id/subcategories", createSubCategoryHandler(d.categories, d.media, m))
	w.PUT("/categories/:id/subcategories/reorder", reorderSubCategoriesHandler(d.categories, m))
	w.PUT("/subcategories/:id", updateSubCategoryHandler(d.categories, d.media, m))
	w.PATCH("/subcategories/:id/active", setSubCategoryActiveHandler(d.categories, m))
	w.DELETE("/subcategories/:id", deleteSubCategoryHandler(d.categories, m))

	w.POST("/products", createProductHandler(d.products, d.categories, d.media, m))
	w.POST("/products/upload", createProductHandler(d.products, d.categories, d.media, m))
	w.PUT("/products/:id", updateProductHandler(d.products, d.categories, d.media, m))
	w.PUT("/products/:id/upload", updateProductHandler(d.products, d.categories, d.media, m))
	w.DELETE("/products/:id", deleteProductHandler(d.products, m))
	w.PATCH("/products/:id/stock", adjustStockHandler(d.products, m))
}
