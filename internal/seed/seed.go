// Package seed loads a YAML catalog fixture and writes it through the
// regular repositories. Records get name-derived ids, so running the same
// file twice skips what already exists.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/MikeMC777/decor-ecom/internal/catalog"
	"github.com/MikeMC777/decor-ecom/internal/coupon"
	"github.com/MikeMC777/decor-ecom/internal/module"
	"github.com/MikeMC777/decor-ecom/internal/product"
)

type File struct {
	Categories []Category `yaml:"categories"`
	Products   []Product  `yaml:"products"`
	Coupons    []Coupon   `yaml:"coupons"`
}

type Category struct {
	Module        string        `yaml:"module"`
	Name          string        `yaml:"name"`
	Description   string        `yaml:"description"`
	ImageURL      string        `yaml:"imageUrl"`
	VideoURL      string        `yaml:"videoUrl"`
	SortOrder     int           `yaml:"sortOrder"`
	Inactive      bool          `yaml:"inactive"`
	SubCategories []SubCategory `yaml:"subcategories"`
}

type SubCategory struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"imageUrl"`
	SortOrder   int    `yaml:"sortOrder"`
}

// Product refers to its category and sub-category by name.
type Product struct {
	Module       string   `yaml:"module"`
	Category     string   `yaml:"category"`
	SubCategory  string   `yaml:"subcategory"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Material     string   `yaml:"material"`
	Size         string   `yaml:"size"`
	Colour       string   `yaml:"colour"`
	Utility      string   `yaml:"utility"`
	Included     []string `yaml:"included"`
	Excluded     []string `yaml:"excluded"`
	Price        string   `yaml:"price"`
	RegularPrice string   `yaml:"regularPrice"`
	Stock        int      `yaml:"stock"`
	BestSeller   bool     `yaml:"bestSeller"`
	Trending     bool     `yaml:"trending"`
	MostLoved    bool     `yaml:"mostLoved"`
	CODAvailable bool     `yaml:"codAvailable"`
	Images       []string `yaml:"images"`
}

func (p Product) request(m module.Module) product.CreateProductRequest {
	req := product.CreateProductRequest{
		Name: p.Name, Description: p.Description, Material: p.Material, Size: p.Size, Colour: p.Colour,
		CategoryID: ID(string(m), p.Category), Utility: p.Utility, Included: p.Included, Excluded: p.Excluded,
		Price: p.Price, RegularPrice: p.RegularPrice, Stock: p.Stock, BestSeller: p.BestSeller,
		Trending: p.Trending, MostLoved: p.MostLoved, CODAvailable: p.CODAvailable, Images: p.Images,
	}
	if p.SubCategory != "" {
		req.SubCategoryID = ID(string(m), p.Category, p.SubCategory)
	}
	return req
}

type Coupon struct {
	Code               string `yaml:"code"`
	DiscountPercentage int    `yaml:"discountPercentage"`
	MaxUses            int    `yaml:"maxUses"`
	MinOrderAmount     string `yaml:"minOrderAmount"`
	ExpiryDate         string `yaml:"expiryDate"`
	Inactive           bool   `yaml:"inactive"`
}

func (c Coupon) request() coupon.CreateCouponRequest {
	active := !c.Inactive
	return coupon.CreateCouponRequest{
		Code: c.Code, DiscountPercentage: c.DiscountPercentage, MaxUses: c.MaxUses,
		MinOrderAmount: c.MinOrderAmount, ExpiryDate: c.ExpiryDate, IsActive: &active,
	}
}

// Load decodes a fixture, rejecting unknown keys.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

var namespace = uuid.MustParse("6f1c2a0e-4d7b-4f7e-9a51-3c0f6c1d2b10")

// ID derives a stable record id from its identifying parts.
func ID(parts ...string) string {
	key := ""
	for _, p := range parts {
		key += p + "\x00"
	}
	return uuid.NewSHA1(namespace, []byte(key)).String()
}

type Repos struct {
	Catalog  catalog.Repository
	Products product.Repository
	Coupons  coupon.Repository
}

type Report struct {
	Created int
	Skipped int
}

func (r *Report) count(created bool) {
	if created {
		r.Created++
	} else {
		r.Skipped++
	}
}

func Apply(ctx context.Context, f *File, repos Repos) (Report, error) {
	var rep Report
	for _, c := range f.Categories {
		m, err := module.Parse(c.Module)
		if err != nil {
			return rep, fmt.Errorf("category %q: %w", c.Name, err)
		}
		cat := &catalog.Category{
			ID: ID(string(m), c.Name), Module: m, Name: c.Name, Description: c.Description,
			ImageURL: c.ImageURL, VideoURL: c.VideoURL, SortOrder: c.SortOrder, IsActive: !c.Inactive,
		}
		created, err := ensure(func() error { _, err := repos.Catalog.GetCategory(ctx, cat.ID); return err },
			catalog.ErrNotFound, func() error { return repos.Catalog.CreateCategory(ctx, cat) })
		if err != nil {
			return rep, fmt.Errorf("category %q: %w", c.Name, err)
		}
		rep.count(created)

		for _, s := range c.SubCategories {
			sub := &catalog.SubCategory{
				Category: catalog.Category{
					ID: ID(string(m), c.Name, s.Name), Module: m, Name: s.Name, Description: s.Description,
					ImageURL: s.ImageURL, SortOrder: s.SortOrder, IsActive: true,
				},
				CategoryID: cat.ID,
			}
			created, err := ensure(func() error { _, err := repos.Catalog.GetSubCategory(ctx, sub.ID); return err },
				catalog.ErrNotFound, func() error { return repos.Catalog.CreateSubCategory(ctx, sub) })
			if err != nil {
				return rep, fmt.Errorf("subcategory %q: %w", s.Name, err)
			}
			rep.count(created)
		}
	}

	for _, p := range f.Products {
		m, err := module.Parse(p.Module)
		if err != nil {
			return rep, fmt.Errorf("product %q: %w", p.Name, err)
		}
		prod, err := p.request(m).Product(m)
		if err != nil {
			return rep, fmt.Errorf("product %q: %w", p.Name, err)
		}
		if err := prod.Validate(); err != nil {
			return rep, fmt.Errorf("product %q: %w", p.Name, err)
		}
		prod.ID = ID(string(m), "product", p.Name)
		created, err := ensure(func() error { _, err := repos.Products.GetByID(ctx, prod.ID); return err },
			product.ErrNotFound, func() error { return repos.Products.Create(ctx, prod) })
		if err != nil {
			return rep, fmt.Errorf("product %q: %w", p.Name, err)
		}
		rep.count(created)
	}

	for _, c := range f.Coupons {
		cp, err := c.request().Coupon()
		if err != nil {
			return rep, fmt.Errorf("coupon %q: %w", c.Code, err)
		}
		cp.ID = ID("coupon", cp.Code)
		created, err := ensure(func() error { _, err := repos.Coupons.GetByCode(ctx, cp.Code); return err },
			coupon.ErrNotFound, func() error { return repos.Coupons.Create(ctx, cp) })
		if err != nil {
			return rep, fmt.Errorf("coupon %q: %w", c.Code, err)
		}
		rep.count(created)
	}

	log.Printf("[seed] created=%d skipped=%d", rep.Created, rep.Skipped)
	return rep, nil
}

// ensure creates the record unless lookup finds it.
func ensure(lookup func() error, notFound error, create func() error) (bool, error) {
	err := lookup()
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, notFound) {
		return false, err
	}
	return true, create()
}
