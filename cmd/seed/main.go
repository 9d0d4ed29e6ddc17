// Command seed loads categories, products and coupons from a YAML file into
// Postgres. Records that already exist are left untouched, so it can be run
// repeatedly.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeMC777/decor-ecom/internal/catalog"
	"github.com/MikeMC777/decor-ecom/internal/config"
	"github.com/MikeMC777/decor-ecom/internal/coupon"
	"github.com/MikeMC777/decor-ecom/internal/platform/postgres"
	"github.com/MikeMC777/decor-ecom/internal/product"
	"github.com/MikeMC777/decor-ecom/internal/seed"
)

func main() {
	file := flag.String("file", "catalog.yaml", "seed file to load")
	flag.Parse()

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fh, err := os.Open(*file)
	if err != nil {
		log.Fatalf("open %s: %v", *file, err)
	}
	defer fh.Close()
	f, err := seed.Load(fh)
	if err != nil {
		log.Fatalf("%s: %v", *file, err)
	}

	pool, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.PGMaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rep, err := seed.Apply(ctx, f, seed.Repos{
		Catalog:  catalog.NewPGRepo(pool),
		Products: product.NewPGRepo(pool),
		Coupons:  coupon.NewPGRepo(pool),
	})
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("[seed] %s: %d created, %d already present", *file, rep.Created, rep.Skipped)
}
