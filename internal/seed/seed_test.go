package seed

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/decor-ecom/internal/catalog"
	"github.com/MikeMC777/decor-ecom/internal/coupon"
	"github.com/MikeMC777/decor-ecom/internal/module"
	"github.com/MikeMC777/decor-ecom/internal/product"
)

type catStub struct {
	catalog.Repository
	cats map[string]*catalog.Category
	subs map[string]*catalog.SubCategory
}

func (s *catStub) GetCategory(_ context.Context, id string) (*catalog.Category, error) {
	if c, ok := s.cats[id]; ok {
		return c, nil
	}
	return nil, catalog.ErrNotFound
}

func (s *catStub) CreateCategory(_ context.Context, c *catalog.Category) error {
	s.cats[c.ID] = c
	return nil
}

func (s *catStub) GetSubCategory(_ context.Context, id string) (*catalog.SubCategory, error) {
	if c, ok := s.subs[id]; ok {
		return c, nil
	}
	return nil, catalog.ErrNotFound
}

func (s *catStub) CreateSubCategory(_ context.Context, c *catalog.SubCategory) error {
	s.subs[c.ID] = c
	return nil
}

type prodStub struct {
	product.Repository
	m map[string]*product.Product
}

func (s *prodStub) GetByID(_ context.Context, id string) (*product.Product, error) {
	if p, ok := s.m[id]; ok {
		return p, nil
	}
	return nil, product.ErrNotFound
}

func (s *prodStub) Create(_ context.Context, p *product.Product) error {
	s.m[p.ID] = p
	return nil
}

type couponStub struct {
	coupon.Repository
	m map[string]*coupon.Coupon
}

func (s *couponStub) GetByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	if c, ok := s.m[code]; ok {
		return c, nil
	}
	return nil, coupon.ErrNotFound
}

func (s *couponStub) Create(_ context.Context, c *coupon.Coupon) error {
	s.m[c.Code] = c
	return nil
}

func TestApply_IsIdempotent(t *testing.T) {
	fh, err := os.Open("testdata/catalog.yaml")
	require.NoError(t, err)
	defer fh.Close()
	f, err := Load(fh)
	require.NoError(t, err)

	cats := &catStub{cats: map[string]*catalog.Category{}, subs: map[string]*catalog.SubCategory{}}
	prods := &prodStub{m: map[string]*product.Product{}}
	cps := &couponStub{m: map[string]*coupon.Coupon{}}
	repos := Repos{Catalog: cats, Products: prods, Coupons: cps}

	rep, err := Apply(context.Background(), f, repos)
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 7}, rep)

	arch := prods.m[ID("service", "product", "Pastel Balloon Arch")]
	require.NotNil(t, arch)
	assert.Equal(t, module.Service, arch.Module)
	assert.Equal(t, ID("service", "Birthday Decor"), arch.CategoryID)
	assert.Equal(t, ID("service", "Birthday Decor", "Kids Birthday"), arch.SubCategoryID)
	assert.Equal(t, []string{"Balloons", "Arch stand", "Setup"}, arch.Included)

	pack := prods.m[ID("shop", "product", "Metallic Balloon Pack")]
	require.NotNil(t, pack)
	assert.True(t, pack.RegularPrice.Equal(pack.Price))

	assert.Equal(t, 20, cps.m["SUMMER2024"].DiscountPercentage)

	rep, err = Apply(context.Background(), f, repos)
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 7}, rep)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, err := Load(strings.NewReader("categories:\n  - nmae: typo\n"))
	assert.Error(t, err)
}

func TestApply_RejectsInvalidProduct(t *testing.T) {
	f, err := Load(strings.NewReader(`
products:
  - module: shop
    category: X
    name: Bad
    price: "500"
    regularPrice: "400"
`))
	require.NoError(t, err)
	_, err = Apply(context.Background(), f, Repos{Products: &prodStub{m: map[string]*product.Product{}}})
	assert.ErrorIs(t, err, product.ErrInvalid)
}
