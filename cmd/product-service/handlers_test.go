package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/decor-ecom/docs"
	"github.com/MikeMC777/decor-ecom/internal/auth"
	"github.com/MikeMC777/decor-ecom/internal/catalog"
	"github.com/MikeMC777/decor-ecom/internal/httpx"
	"github.com/MikeMC777/decor-ecom/internal/media"
	"github.com/MikeMC777/decor-ecom/internal/module"
	"github.com/MikeMC777/decor-ecom/internal/product"
)

//
// ===== in-memory repositories =====
//

type stubCatalog struct {
	mu   sync.Mutex
	cats map[string]*catalog.Category
	subs map[string]*catalog.SubCategory
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{cats: map[string]*catalog.Category{}, subs: map[string]*catalog.SubCategory{}}
}

func (s *stubCatalog) ListCategories(_ context.Context, m module.Module, onlyActive bool) ([]catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []catalog.Category{}
	for _, c := range s.cats {
		if c.Module == m && (!onlyActive || c.IsActive) {
			out = append(out, *c)
		}
	}
	catalog.SortCategories(out)
	return out, nil
}

func (s *stubCatalog) GetCategory(_ context.Context, id string) (*catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cats[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *stubCatalog) CreateCategory(_ context.Context, c *catalog.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Version = 1
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	s.cats[c.ID] = &cp
	return nil
}

func apply(c *catalog.Category, p catalog.Patch) error {
	if p.Version != nil && *p.Version != c.Version {
		return catalog.ErrVersionConflict
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.Name, p.Name)
	set(&c.Description, p.Description)
	set(&c.ImageURL, p.ImageURL)
	set(&c.VideoURL, p.VideoURL)
	if p.SortOrder != nil {
		c.SortOrder = *p.SortOrder
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
	c.Version++
	return nil
}

func (s *stubCatalog) UpdateCategory(_ context.Context, id string, p catalog.Patch) (*catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cats[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	if err := apply(c, p); err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

func (s *stubCatalog) DeleteCategory(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cats[id]
	delete(s.cats, id)
	return ok, nil
}

func (s *stubCatalog) ReorderCategories(_ context.Context, m module.Module, order []catalog.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var siblings []string
	for id, c := range s.cats {
		if c.Module == m {
			siblings = append(siblings, id)
		}
	}
	ranked, err := catalog.Renumber(order, siblings)
	if err != nil {
		return err
	}
	for _, p := range ranked {
		s.cats[p.ID].SortOrder = p.SortOrder
	}
	return nil
}

func (s *stubCatalog) ListSubCategories(_ context.Context, categoryID string, onlyActive bool) ([]catalog.SubCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []catalog.SubCategory{}
	for _, c := range s.subs {
		if c.CategoryID == categoryID && (!onlyActive || c.IsActive) {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (s *stubCatalog) GetSubCategory(_ context.Context, id string) (*catalog.SubCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.subs[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *stubCatalog) CreateSubCategory(_ context.Context, c *catalog.SubCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Version = 1
	cp := *c
	s.subs[c.ID] = &cp
	return nil
}

func (s *stubCatalog) UpdateSubCategory(_ context.Context, id string, p catalog.Patch) (*catalog.SubCategory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.subs[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	if err := apply(&c.Category, p); err != nil {
		return nil, err
	}
	cp := *c
	return &cp, nil
}

func (s *stubCatalog) DeleteSubCategory(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.subs[id]
	delete(s.subs, id)
	return ok, nil
}

func (s *stubCatalog) ReorderSubCategories(_ context.Context, categoryID string, order []catalog.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var siblings []string
	for id, c := range s.subs {
		if c.CategoryID == categoryID {
			siblings = append(siblings, id)
		}
	}
	ranked, err := catalog.Renumber(order, siblings)
	if err != nil {
		return err
	}
	for _, p := range ranked {
		s.subs[p.ID].SortOrder = p.SortOrder
	}
	return nil
}

type stubProducts struct {
	mu      sync.Mutex
	items   map[string]*product.Product
	writes  int
	failing error
}

func newStubProducts() *stubProducts { return &stubProducts{items: map[string]*product.Product{}} }

func (s *stubProducts) Create(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing != nil {
		return s.failing
	}
	s.writes++
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubProducts) List(_ context.Context, q product.Query) ([]product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []product.Product{}
	for _, p := range s.items {
		if p.Module != q.Module {
			continue
		}
		if q.BestSeller != nil && p.BestSeller != *q.BestSeller {
			continue
		}
		if q.Q != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Q)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if q.Offset >= len(out) {
		return []product.Product{}, nil
	}
	out = out[q.Offset:]
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *stubProducts) Update(_ context.Context, p *product.Product, updateStock bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[p.ID]
	if !ok {
		return product.ErrNotFound
	}
	if s.failing != nil {
		return s.failing
	}
	s.writes++
	if !updateStock {
		p.Stock = cur.Stock
	}
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *stubProducts) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[id]
	delete(s.items, id)
	return ok, nil
}

func (s *stubProducts) AdjustStock(_ context.Context, id string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return 0, product.ErrNotFound
	}
	if p.Stock+delta < 0 {
		return 0, product.ErrInsufficientStock
	}
	p.Stock += delta
	return p.Stock, nil
}

//
// ===== router and helpers =====
//

func newTestDeps(t *testing.T) deps {
	t.Helper()
	store, err := media.NewStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatal(err)
	}
	return deps{categories: newStubCatalog(), products: newStubProducts(), media: store}
}

func newRouter(d deps, guard ...gin.HandlerFunc) *gin.Engine {
	httpx.RegisterValidators()
	r := gin.New()
	if len(guard) == 0 {
		guard = []gin.HandlerFunc{auth.WithPrincipal(&auth.Principal{Subject: "admin", Role: auth.RoleAdmin})}
	}
	for _, m := range module.All {
		registerRoutes(r.Group(m.Prefix()), m, d, guard...)
	}
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func doMultipart(t *testing.T, r http.Handler, method, path string, fields map[string]string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write([]byte("fake image bytes"))
	}
	_ = mw.Close()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return v
}

func seedCategory(t *testing.T, repo catalog.Repository, m module.Module, name string, order int) string {
	t.Helper()
	id := uuid.NewString()
	if err := repo.CreateCategory(context.Background(), &catalog.Category{ID: id, Module: m, Name: name, SortOrder: order, IsActive: true}); err != nil {
		t.Fatal(err)
	}
	return id
}

func seedSubCategory(t *testing.T, repo catalog.Repository, parent string, m module.Module, name string) string {
	t.Helper()
	id := uuid.NewString()
	s := &catalog.SubCategory{Category: catalog.Category{ID: id, Module: m, Name: name, IsActive: true}, CategoryID: parent}
	if err := repo.CreateSubCategory(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	return id
}

func storedFiles(t *testing.T, store *media.Store) int {
	t.Helper()
	entries, err := os.ReadDir(store.Dir)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func seedProduct(t *testing.T, repo product.Repository, m module.Module, name string, stock int) string {
	t.Helper()
	id := uuid.NewString()
	p := &product.Product{
		ID: id, Module: m, Name: name, CategoryID: "c",
		Price: decimal.NewFromInt(100), RegularPrice: decimal.NewFromInt(120), Stock: stock,
		Images: []string{"/uploads/one.jpg"},
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return id
}

//
// ===== categories =====
//

func TestReorderCategories_PersistsSubmittedOrder(t *testing.T) {
	d := newTestDeps(t)
	a := seedCategory(t, d.categories, module.Service, "A", 0)
	b := seedCategory(t, d.categories, module.Service, "B", 1)
	c := seedCategory(t, d.categories, module.Service, "C", 2)
	seedCategory(t, d.categories, module.Shop, "other module", 0)
	r := newRouter(d)

	body := fmt.Sprintf(`{"items":[{"id":%q,"sortOrder":0},{"id":%q,"sortOrder":1},{"id":%q,"sortOrder":2}]}`, b, a, c)
	w := doJSON(r, http.MethodPut, "/api/categories/reorder", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got := decode[[]catalog.Category](t, w)
	if len(got) != 3 || got[0].ID != b || got[1].ID != a || got[2].ID != c {
		t.Fatalf("unexpected order %+v", got)
	}

	body = fmt.Sprintf(`{"items":[{"id":%q,"sortOrder":10},{"id":%q,"sortOrder":20},{"id":%q,"sortOrder":5}]}`, b, a, c)
	w = doJSON(r, http.MethodPut, "/api/categories/reorder", body)
	got = decode[[]catalog.Category](t, w)
	want := map[string]int{c: 0, b: 1, a: 2}
	for _, cat := range got {
		if cat.SortOrder != want[cat.ID] {
			t.Fatalf("%s sortOrder=%d want %d", cat.Name, cat.SortOrder, want[cat.ID])
		}
	}
}

func TestReorderCategories_RejectsPartialOrder(t *testing.T) {
	d := newTestDeps(t)
	a := seedCategory(t, d.categories, module.Service, "A", 0)
	seedCategory(t, d.categories, module.Service, "B", 1)
	r := newRouter(d)

	w := doJSON(r, http.MethodPut, "/api/categories/reorder", fmt.Sprintf(`{"items":[{"id":%q,"sortOrder":0}]}`, a))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
}

func TestCreateCategory_ImageRequirement(t *testing.T) {
	d := newTestDeps(t)
	body := `{"name":"Birthday","description":"Balloon decor"}`

	w := doJSON(newRouter(d), http.MethodPost, "/api/categories", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("image optional: status=%d body=%s", w.Code, w.Body.String())
	}
	if cat := decode[catalog.Category](t, w); !cat.IsActive || cat.SortOrder != 0 || cat.Module != module.Service {
		t.Fatalf("defaults not applied: %+v", cat)
	}

	d.imageRequired = true
	r := newRouter(d)
	w = doJSON(r, http.MethodPost, "/api/categories", body)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "Category image is required") {
		t.Fatalf("image required: status=%d body=%s", w.Code, w.Body.String())
	}

	w = doMultipart(t, r, http.MethodPost, "/api/shop/categories",
		map[string]string{"name": "Candles", "description": "Scented"}, map[string]string{"image": "candle.png"})
	if w.Code != http.StatusCreated {
		t.Fatalf("multipart: status=%d body=%s", w.Code, w.Body.String())
	}
	cat := decode[catalog.Category](t, w)
	if cat.Module != module.Shop || !strings.HasPrefix(cat.ImageURL, "/uploads/") || !strings.HasSuffix(cat.ImageURL, ".png") {
		t.Fatalf("unexpected category %+v", cat)
	}

	w = doMultipart(t, r, http.MethodPost, "/api/categories",
		map[string]string{"name": "X", "description": "Y"}, map[string]string{"image": "script.exe"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad file type: status=%d", w.Code)
	}
}

func TestCreateCategory_MissingFields(t *testing.T) {
	r := newRouter(newTestDeps(t))
	w := doJSON(r, http.MethodPost, "/api/categories", `{"name":"only name"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	body := decode[httpx.ErrorBody](t, w)
	if len(body.Details) != 1 || body.Details[0] != "description is required" {
		t.Fatalf("details=%v", body.Details)
	}
}

func TestUpdateCategory_PartialAndVersioned(t *testing.T) {
	d := newTestDeps(t)
	id := seedCategory(t, d.categories, module.Service, "Wedding", 3)
	r := newRouter(d)

	w := doJSON(r, http.MethodPut, "/api/categories/"+id, `{"description":"Mandap and stage","version":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	cat := decode[catalog.Category](t, w)
	if cat.Name != "Wedding" || cat.Description != "Mandap and stage" || cat.SortOrder != 3 || cat.Version != 2 {
		t.Fatalf("unexpected %+v", cat)
	}

	w = doJSON(r, http.MethodPut, "/api/categories/"+id, `{"name":"Stale","version":1}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("stale version: status=%d", w.Code)
	}

	w = doJSON(r, http.MethodPatch, "/api/categories/"+id+"/active", `{"isActive":false}`)
	if w.Code != http.StatusOK || decode[catalog.Category](t, w).IsActive {
		t.Fatalf("toggle: status=%d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodGet, "/api/categories?active=true", "")
	if got := decode[[]catalog.Category](t, w); len(got) != 0 {
		t.Fatalf("inactive category listed: %+v", got)
	}
}

func TestCategory_OtherModuleIsNotFound(t *testing.T) {
	d := newTestDeps(t)
	id := seedCategory(t, d.categories, module.Shop, "Candles", 0)
	r := newRouter(d)

	if w := doJSON(r, http.MethodGet, "/api/categories/"+id, ""); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/api/shop/categories/"+id, ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", w.Code)
	}
	if w := doJSON(r, http.MethodDelete, "/api/shop/categories/"+id, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", w.Code)
	}
}

func TestSubCategories_CreateListReorder(t *testing.T) {
	d := newTestDeps(t)
	parent := seedCategory(t, d.categories, module.Service, "Birthday", 0)
	r := newRouter(d)

	var ids []string
	for _, name := range []string{"Kids", "Milestone"} {
		w := doJSON(r, http.MethodPost, "/api/categories/"+parent+"/subcategories",
			fmt.Sprintf(`{"name":%q,"description":"d"}`, name))
		if w.Code != http.StatusCreated {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		s := decode[catalog.SubCategory](t, w)
		if s.CategoryID != parent || s.Module != module.Service {
			t.Fatalf("unexpected %+v", s)
		}
		ids = append(ids, s.ID)
	}

	body := fmt.Sprintf(`{"items":[{"id":%q,"sortOrder":0},{"id":%q,"sortOrder":1}]}`, ids[1], ids[0])
	w := doJSON(r, http.MethodPut, "/api/categories/"+parent+"/subcategories/reorder", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got := decode[[]catalog.SubCategory](t, w)
	if len(got) != 2 || got[0].ID != ids[1] {
		t.Fatalf("unexpected order %+v", got)
	}

	if w := doJSON(r, http.MethodGet, "/api/shop/categories/"+parent+"/subcategories", ""); w.Code != http.StatusNotFound {
		t.Fatalf("cross-module parent: status=%d", w.Code)
	}
}

//
// ===== products =====
//

func TestCreateProduct_PriceAboveRegularIsRejectedBeforeWrite(t *testing.T) {
	d := newTestDeps(t)
	r := newRouter(d)

	w := doJSON(r, http.MethodPost, "/api/shop/products",
		`{"name":"Vase","categoryId":"c1","price":"500","regularPrice":"400","stock":1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if n := d.products.(*stubProducts).writes; n != 0 {
		t.Fatalf("writes=%d, want 0", n)
	}
}

func TestCreateProduct_DefaultsAndList(t *testing.T) {
	d := newTestDeps(t)
	cat := seedCategory(t, d.categories, module.Shop, "Balloons", 0)
	r := newRouter(d)

	w := doJSON(r, http.MethodPost, "/api/shop/products",
		`{"name":"Gold Balloons","categoryId":"`+cat+`","price":"299","stock":4,"bestSeller":true,"included":["Pump"]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	p := decode[product.Product](t, w)
	if !p.RegularPrice.Equal(p.Price) || p.Module != module.Shop || len(p.Included) != 1 {
		t.Fatalf("unexpected %+v", p)
	}
	seedProduct(t, d.products, module.Shop, "Candles", 3)
	seedProduct(t, d.products, module.Service, "Arch", 3)

	w = doJSON(r, http.MethodGet, "/api/shop/products?limit=500&bestSeller=true", "")
	got := decode[product.ListResponse](t, w)
	if got.Limit != product.DefaultLimit || len(got.Items) != 1 || got.Items[0].ID != p.ID {
		t.Fatalf("unexpected list %+v", got)
	}

	if w := doJSON(r, http.MethodGet, "/api/shop/products?trending=maybe", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad flag: status=%d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/api/products/"+p.ID, ""); w.Code != http.StatusNotFound {
		t.Fatalf("cross-module get: status=%d", w.Code)
	}
}

func TestProduct_CategoryMustBelongToModule(t *testing.T) {
	d := newTestDeps(t)
	shopCat := seedCategory(t, d.categories, module.Shop, "Vases", 0)
	otherShopCat := seedCategory(t, d.categories, module.Shop, "Candles", 1)
	serviceCat := seedCategory(t, d.categories, module.Service, "Wedding", 0)
	sub := seedSubCategory(t, d.categories, shopCat, module.Shop, "Brass")
	otherSub := seedSubCategory(t, d.categories, otherShopCat, module.Shop, "Scented")
	r := newRouter(d)

	create := func(cat, sub string) *httptest.ResponseRecorder {
		return doJSON(r, http.MethodPost, "/api/shop/products",
			fmt.Sprintf(`{"name":"Vase","categoryId":%q,"subCategoryId":%q,"price":"250","stock":1}`, cat, sub))
	}
	for name, w := range map[string]*httptest.ResponseRecorder{
		"missing category":      create("nope", ""),
		"other module category": create(serviceCat, ""),
		"foreign sub-category":  create(shopCat, otherSub),
		"missing sub-category":  create(shopCat, "nope"),
	} {
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d body=%s", name, w.Code, w.Body.String())
		}
	}
	if n := d.products.(*stubProducts).writes; n != 0 {
		t.Fatalf("writes=%d, want 0", n)
	}

	w := create(shopCat, sub)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	p := decode[product.Product](t, w)

	if w := doJSON(r, http.MethodPut, "/api/shop/products/"+p.ID, `{"categoryId":"`+serviceCat+`"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("move to other module category: status=%d", w.Code)
	}
	if w := doJSON(r, http.MethodPut, "/api/shop/products/"+p.ID, `{"subCategoryId":"`+otherSub+`"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("foreign sub-category on update: status=%d", w.Code)
	}
	w = doJSON(r, http.MethodPut, "/api/shop/products/"+p.ID, `{"categoryId":"`+otherShopCat+`","subCategoryId":"`+otherSub+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("valid move: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestUploads_DiscardedWhenRequestFails(t *testing.T) {
	d := newTestDeps(t)
	d.imageRequired = true
	cat := seedCategory(t, d.categories, module.Shop, "Vases", 0)
	r := newRouter(d)

	w := doMultipart(t, r, http.MethodPost, "/api/categories",
		map[string]string{"name": "Haldi", "description": "Marigold"}, map[string]string{"video": "walkthrough.mp4"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing image: status=%d body=%s", w.Code, w.Body.String())
	}
	if n := storedFiles(t, d.media); n != 0 {
		t.Fatalf("rejected category left %d files", n)
	}

	d.products.(*stubProducts).failing = fmt.Errorf("disk full")
	w = doMultipart(t, r, http.MethodPost, "/api/shop/products/upload",
		map[string]string{"name": "Vase", "categoryId": cat, "price": "250", "stock": "1"}, map[string]string{"image1": "front.jpg"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("failed create: status=%d body=%s", w.Code, w.Body.String())
	}
	if n := storedFiles(t, d.media); n != 0 {
		t.Fatalf("failed product create left %d files", n)
	}

	d.products.(*stubProducts).failing = nil
	w = doMultipart(t, r, http.MethodPost, "/api/shop/products/upload",
		map[string]string{"name": "Vase", "categoryId": cat, "price": "250", "stock": "1"}, map[string]string{"image1": "front.jpg"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status=%d body=%s", w.Code, w.Body.String())
	}
	if n := storedFiles(t, d.media); n != 1 {
		t.Fatalf("stored files=%d, want 1", n)
	}
}

func TestUpdateProduct_SlotUploadKeepsOtherImages(t *testing.T) {
	d := newTestDeps(t)
	id := seedProduct(t, d.products, module.Service, "Arch", 5)
	r := newRouter(d)

	w := doMultipart(t, r, http.MethodPut, "/api/products/"+id+"/upload",
		map[string]string{"name": "Arch XL"}, map[string]string{"image2": "side.webp"})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	p := decode[product.Product](t, w)
	if p.Name != "Arch XL" || len(p.Images) != 2 || p.Images[0] != "/uploads/one.jpg" || !strings.HasSuffix(p.Images[1], ".webp") {
		t.Fatalf("unexpected %+v", p)
	}
	if p.Stock != 5 {
		t.Fatalf("stock changed without being sent: %d", p.Stock)
	}

	w = doJSON(r, http.MethodPut, "/api/products/"+id, `{"price":"999"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("price above regular on update: status=%d", w.Code)
	}
}

func TestAdjustStock(t *testing.T) {
	d := newTestDeps(t)
	id := seedProduct(t, d.products, module.Shop, "Vase", 2)
	r := newRouter(d)

	w := doJSON(r, http.MethodPatch, "/api/shop/products/"+id+"/stock", `{"delta":-2}`)
	if w.Code != http.StatusOK || decode[product.StockResponse](t, w).Stock != 0 {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w := doJSON(r, http.MethodPatch, "/api/shop/products/"+id+"/stock", `{"delta":-1}`); w.Code != http.StatusConflict {
		t.Fatalf("oversell: status=%d", w.Code)
	}
	if w := doJSON(r, http.MethodPatch, "/api/shop/products/missing/stock", `{"delta":1}`); w.Code != http.StatusNotFound {
		t.Fatalf("missing: status=%d", w.Code)
	}
}

func TestWriteRoutesRequireAdmin(t *testing.T) {
	v := &auth.Verifier{Issuer: auth.NewIssuer("k", time.Hour), Sessions: auth.NewMemorySessions()}
	e, err := auth.NewEnforcer(auth.DefaultPolicies())
	if err != nil {
		t.Fatal(err)
	}
	d := newTestDeps(t)
	id := seedProduct(t, d.products, module.Shop, "Vase", 2)
	r := newRouter(d, auth.Authenticate(v), auth.Authorize(e))

	if w := doJSON(r, http.MethodPost, "/api/categories", `{"name":"a","description":"b"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status=%d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/api/categories", ""); w.Code != http.StatusOK {
		t.Fatalf("public read: status=%d", w.Code)
	}

	svcTok, err := v.Issuer.IssueService("order-service")
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPatch, "/api/shop/products/"+id+"/stock", strings.NewReader(`{"delta":-1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+svcTok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("service stock call: status=%d body=%s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/shop/products/"+id, nil)
	req.Header.Set("Authorization", "Bearer "+svcTok)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("service delete: status=%d", w.Code)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	log.SetOutput(io.Discard)
}

func TestDocs_MatchRoutes(t *testing.T) {
	missing, stale, err := docs.Diff(docs.ProductInstance, newRouter(newTestDeps(t)).Routes())
	if err != nil {
		t.Fatal(err)
	}
	if len(missing) > 0 || len(stale) > 0 {
		t.Fatalf("undocumented routes %v; documented but unrouted %v", missing, stale)
	}
}
