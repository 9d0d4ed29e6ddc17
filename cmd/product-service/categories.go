package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/decor-ecom/internal/catalog"
	"github.com/MikeMC777/decor-ecom/internal/httpx"
	"github.com/MikeMC777/decor-ecom/internal/media"
	"github.com/MikeMC777/decor-ecom/internal/module"
	"github.com/MikeMC777/decor-ecom/internal/product"
)

// respond maps domain errors to HTTP answers.
func respond(c *gin.Context, err error) {
	var invalid *product.ValidationError
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, product.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrVersionConflict), errors.Is(err, product.ErrInsufficientStock):
		httpx.Error(c, http.StatusConflict, err.Error())
	case errors.As(err, &invalid):
		httpx.Error(c, http.StatusBadRequest, "validation failed", invalid.Problems...)
	case errors.Is(err, catalog.ErrInvalidOrder), errors.Is(err, media.ErrUnsupportedType):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	default:
		httpx.Internal(c, err)
	}
}

// upload stores the multipart part named field, if the request carries one.
func upload(c *gin.Context, store *media.Store, field string, kind media.Kind) (string, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return store.Save(c.SaveUploadedFile, fh, kind)
}

// uploads tracks the files stored while handling one request. Unless keep
// is called, discard removes them again.
type uploads struct {
	store *media.Store
	urls  []string
	kept  bool
}

func newUploads(store *media.Store) *uploads { return &uploads{store: store} }

func (u *uploads) save(c *gin.Context, field string, kind media.Kind) (string, error) {
	url, err := upload(c, u.store, field, kind)
	if url != "" {
		u.urls = append(u.urls, url)
	}
	return url, err
}

func (u *uploads) keep() { u.kept = true }

func (u *uploads) discard() {
	if !u.kept {
		u.store.Discard(u.urls...)
	}
}

func onlyActive(c *gin.Context) bool {
	b, _ := strconv.ParseBool(c.Query("active"))
	return b
}

// categoryIn loads a category and hides those of the other module.
func categoryIn(c *gin.Context, repo catalog.Repository, m module.Module, id string) (*catalog.Category, bool) {
	cat, err := repo.GetCategory(c.Request.Context(), id)
	if err == nil && cat.Module != m {
		err = catalog.ErrNotFound
	}
	if err != nil {
		respond(c, err)
		return nil, false
	}
	return cat, true
}

func subCategoryIn(c *gin.Context, repo catalog.Repository, m module.Module, id string) (*catalog.SubCategory, bool) {
	s, err := repo.GetSubCategory(c.Request.Context(), id)
	if err == nil && s.Module != m {
		err = catalog.ErrNotFound
	}
	if err != nil {
		respond(c, err)
		return nil, false
	}
	return s, true
}

func listCategoriesHandler(repo catalog.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.ListCategories(c.Request.Context(), m, onlyActive(c))
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func getCategoryHandler(repo catalog.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cat, ok := categoryIn(c, repo, m, c.Param("id")); ok {
			c.JSON(http.StatusOK, cat)
		}
	}
}

// bindNode binds a create form and resolves its image and video, uploaded
// files taking precedence over URLs.
func bindNode(c *gin.Context, up *uploads, m module.Module) (*catalog.Category, bool) {
	var in catalog.CategoryForm
	if err := c.ShouldBind(&in); err != nil {
		httpx.BindError(c, err)
		return nil, false
	}
	img, err := up.save(c, "image", media.Image)
	if err != nil {
		respond(c, err)
		return nil, false
	}
	video, err := up.save(c, "video", media.Video)
	if err != nil {
		respond(c, err)
		return nil, false
	}
	if img == "" {
		img = in.ImageURL
	}
	if video == "" {
		video = in.VideoURL
	}
	return &catalog.Category{
		ID:          uuid.NewString(),
		Module:      m,
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    img,
		VideoURL:    video,
		SortOrder:   in.SortOrder,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}, true
}

func createCategoryHandler(repo catalog.Repository, store *media.Store, m module.Module, imageRequired bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		up := newUploads(store)
		defer up.discard()
		cat, ok := bindNode(c, up, m)
		if !ok {
			return
		}
		if imageRequired && cat.ImageURL == "" {
			httpx.Error(c, http.StatusBadRequest, "Category image is required")
			return
		}
		if err := repo.CreateCategory(c.Request.Context(), cat); err != nil {
			httpx.Internal(c, err)
			return
		}
		up.keep()
		c.JSON(http.StatusCreated, cat)
	}
}

// bindPatch binds a partial update, letting uploads override the URLs.
func bindPatch(c *gin.Context, up *uploads) (catalog.Patch, bool) {
	var in catalog.CategoryPatchForm
	if err := c.ShouldBind(&in); err != nil {
		httpx.BindError(c, err)
		return catalog.Patch{}, false
	}
	p := in.Patch()
	img, err := up.save(c, "image", media.Image)
	if err != nil {
		respond(c, err)
		return p, false
	}
	video, err := up.save(c, "video", media.Video)
	if err != nil {
		respond(c, err)
		return p, false
	}
	if img != "" {
		p.ImageURL = &img
	}
	if video != "" {
		p.VideoURL = &video
	}
	if p.Empty() {
		httpx.Error(c, http.StatusBadRequest, "no fields to update")
		return p, false
	}
	return p, true
}

func updateCategoryHandler(repo catalog.Repository, store *media.Store, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, ok := categoryIn(c, repo, m, id); !ok {
			return
		}
		up := newUploads(store)
		defer up.discard()
		p, ok := bindPatch(c, up)
		if !ok {
			return
		}
		cat, err := repo.UpdateCategory(c.Request.Context(), id, p)
		if err != nil {
			respond(c, err)
			return
		}
		up.keep()
		c.JSON(http.StatusOK, cat)
	}
}

func setCategoryActiveHandler(repo catalog.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, ok := categoryIn(c, repo, m, id); !ok {
			return
		}
		var in catalog.ActiveRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		cat, err := repo.UpdateCategory(c.Request.Context(), id, catalog.Patch{IsActive: in.IsActive})
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

func deleteCategoryHandler(repo catalog.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, ok := categoryIn(c, repo, m, id); !ok {
			return
		}
		if _, err := repo.DeleteCategory(c.Request.Context(), id); err != nil {
			httpx.Internal(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func reorderCategoriesHandler(repo catalog.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in catalog.ReorderRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		ctx := c.Request.Context()
		if err := repo.ReorderCategories(ctx, m, in.Items); err != nil {
			respond(c, err)
			return
		}
		out, err := repo.ListCategories(ctx, m, false)
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func listSubCategoriesHandler(repo catalog.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		parent, ok := categoryIn(c, repo, m, c.Param("id"))
		if !ok {
			return
		}
		out, err := repo.ListSubCategories(c.Request.Context(), parent.ID, onlyActive(c))
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func getSubCategoryHandler(repo catalog.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := subCategoryIn(c, repo, m, c.Param("id")); ok {
			c.JSON(http.StatusOK, s)
		}
	}
}

func createSubCategoryHandler(repo catalog.Repository, store *media.Store, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		parent, ok := categoryIn(c, repo, m, c.Param("id"))
		if !ok {
			return
		}
		up := newUploads(store)
		defer up.discard()
		node, ok := bindNode(c, up, parent.Module)
		if !ok {
			return
		}
		s := &catalog.SubCategory{Category: *node, CategoryID: parent.ID}
		if err := repo.CreateSubCategory(c.Request.Context(), s); err != nil {
			httpx.Internal(c, err)
			return
		}
		up.keep()
		c.JSON(http.StatusCreated, s)
	}
}

func updateSubCategoryHandler(repo catalog.Repository, store *media.Store, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, ok := subCategoryIn(c, repo, m, id); !ok {
			return
		}
		up := newUploads(store)
		defer up.discard()
		p, ok := bindPatch(c, up)
		if !ok {
			return
		}
		s, err := repo.UpdateSubCategory(c.Request.Context(), id, p)
		if err != nil {
			respond(c, err)
			return
		}
		up.keep()
		c.JSON(http.StatusOK, s)
	}
}

func setSubCategoryActiveHandler(repo catalog.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, ok := subCategoryIn(c, repo, m, id); !ok {
			return
		}
		var in catalog.ActiveRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		s, err := repo.UpdateSubCategory(c.Request.Context(), id, catalog.Patch{IsActive: in.IsActive})
		if err != nil {
			respond(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func deleteSubCategoryHandler(repo catalog.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, ok := subCategoryIn(c, repo, m, id); !ok {
			return
		}
		if _, err := repo.DeleteSubCategory(c.Request.Context(), id); err != nil {
			httpx.Internal(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func reorderSubCategoriesHandler(repo catalog.Repository, m module.Module) gin.HandlerFunc {
	return func(c *gin.Context) {
		parent, ok := categoryIn(c, repo, m, c.Param("id"))
		if !ok {
			return
		}
		var in catalog.ReorderRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			httpx.BindError(c, err)
			return
		}
		ctx := c.Request.Context()
		if err := repo.ReorderSubCategories(ctx, parent.ID, in.Items); err != nil {
			respond(c, err)
			return
		}
		out, err := repo.ListSubCategories(ctx, parent.ID, false)
		if err != nil {
			httpx.Internal(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}
