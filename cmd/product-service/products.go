package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/decor-ecom/internal/catalog"
	"github.com/MikeMC777/decor-ecom/internal/httpx"
	"github.com/MikeMC777/decor-ecom/internal/media"
	"github.com/MikeMC777/decor-ecom/internal/module"
	"github.com/MikeMC777/decor-ecom/internal/product"
)

func parseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

// optionalBool reads a tri-state flag filter; absent means no filter.
func optionalBool(c *gin.Context, key string) (*bool, bool) {
	v, ok := c.GetQuery(key)
	if !ok || v == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		httpx.Error(c, http.StatusBadRequest, key+" must be true or false")
		return nil, false
	}
	return &b, true
}

func productIn(c *gin.Context, repo product.Repository, m module.Module, id string) (*product.Product, bool) {
	p, err := repo.GetByID(c.Request.Context(), id)
	if err == nil && p.Module != m {
		err = product.ErrNotFound
	}
	if err != nil {
		respond(c, err)
		return nil, false
	}
	return p, true
}

func listProductsHandler(repo product.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := product.Query{
			Module:        m,
			CategoryID:    c.Query("categoryId"),
			SubCategoryID: c.Query("subCategoryId"),
			Q:             c.Query("q"),
			Limit:         parseIntDefault(c.Query("limit"), product.DefaultLimit),
			Offset:        parseIntDefault(c.Query("offset"), 0),
		}
		var ok bool
		if q.BestSeller, ok = optionalBool(c, "bestSeller"); !ok {
			return
		}
		if q.Trending, ok = optionalBool(c, "trending"); !ok {
			return
		}
		if q.MostLoved, ok = optionalBool(c, "mostLoved"); !ok {
			return
		}
		q = q.Normalize()

		items, err := repo.List(c.Request.Context(), q)
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, product.ListResponse{Q: q.Q, Limit: q.Limit, Offset: q.Offset, Items: items})
	}
}

func getProductHandler(repo product.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, ok := productIn(c, repo, m, c.Param("id")); ok {
			c.JSON(http.StatusOK, p)
		}
	}
}

// uploadSlots stores image1..image10 parts into their slots.
func uploadSlots(c *gin.Context, up *uploads, p *product.Product) bool {
	for slot := 1; slot <= product.MaxImages; slot++ {
		url, err := up.save(c, product.ImageField(slot), media.Image)
		if err != nil {
			respond(c, err)
			return false
		}
		if url != "" {
			p.Images = product.SetImageSlot(p.Images, slot, url)
		}
	}
	return true
}

// checkPlacement makes sure the product's category belongs to its module
// and its sub-category, when set, belongs to that category.
func checkPlacement(c *gin.Context, categories catalog.Repository, p *product.Product) bool {
	ctx := c.Request.Context()
	cat, err := categories.GetCategory(ctx, p.CategoryID)
	if err == nil && cat.Module != p.Module {
		err = catalog.ErrNotFound
	}
	if errors.Is(err, catalog.ErrNotFound) {
		httpx.Error(c, http.StatusBadRequest, "categoryId is not a "+string(p.Module)+" category")
		return false
	}
	if err != nil {
		httpx.Internal(c, err)
		return false
	}
	if p.SubCategoryID == "" {
		return true
	}
	sub, err := categories.GetSubCategory(ctx, p.SubCategoryID)
	if err == nil && sub.CategoryID != cat.ID {
		err = catalog.ErrNotFound
	}
	if errors.Is(err, catalog.ErrNotFound) {
		httpx.Error(c, http.StatusBadRequest, "subCategoryId is not a sub-category of categoryId")
		return false
	}
	if err != nil {
		httpx.Internal(c, err)
		return false
	}
	return true
}

func createProductHandler(repo product.Repository, categories catalog.Repository, store *media.Store, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in product.CreateProductRequest
		if err := c.ShouldBind(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		p, err := in.Product(m)
		if err != nil {
			respond(c, err)
			return
		}
		// Reject before storing any file.
		if err := p.Validate(); err != nil {
			respond(c, err)
			return
		}
		if !checkPlacement(c, categories, p) {
			return
		}
		up := newUploads(store)
		defer up.discard()
		if !uploadSlots(c, up, p) {
			return
		}
		p.ID = uuid.NewString()
		if err := repo.Create(c.Request.Context(), p); err != nil {
			httpx.Internal(c, err)
			return
		}
		up.keep()
		c.JSON(http.StatusCreated, p)
	}
}

func updateProductHandler(repo product.Repository, categories catalog.Repository, store *media.Store, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := productIn(c, repo, m, c.Param("id"))
		if !ok {
			return
		}
		var in product.UpdateProductRequest
		if err := c.ShouldBind(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		stockChanged, err := in.Apply(p)
		if err != nil {
			respond(c, err)
			return
		}
		if err := p.Validate(); err != nil {
			respond(c, err)
			return
		}
		if (in.CategoryID != nil || in.SubCategoryID != nil) && !checkPlacement(c, categories, p) {
			return
		}
		up := newUploads(store)
		defer up.discard()
		if !uploadSlots(c, up, p) {
			return
		}
		if err := repo.Update(c.Request.Context(), p, stockChanged); err != nil {
			respond(c, err)
			return
		}
		up.keep()
		c.JSON(http.StatusOK, p)
	}
}

func deleteProductHandler(repo product.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, ok := productIn(c, repo, m, id); !ok {
			return
		}
		if _, err := repo.Delete(c.Request.Context(), id); err != nil {
			httpx.Internal(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func adjustStockHandler(repo product.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, ok := productIn(c, repo, m, id); !ok {
			return
		}
		var in product.StockRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		stock, err := repo.AdjustStock(c.Request.Context(), id, in.Delta)
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, product.StockResponse{ID: id, Stock: stock})
	}
}
