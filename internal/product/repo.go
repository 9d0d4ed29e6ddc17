// Package product provides the repository interface and PostgreSQL implementation for managing products.
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/decor-ecom/internal/module"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Query struct {
	Module        module.Module
	CategoryID    string
	SubCategoryID string
	Q             string
	BestSeller    *bool
	Trending      *bool
	MostLoved     *bool
	Limit         int
	Offset        int
}

// Normalize clamps paging to the supported window.
func (q Query) Normalize() Query {
	if q.Limit <= 0 || q.Limit > MaxLimit {
		q.Limit = DefaultLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Q = strings.TrimSpace(q.Q)
	return q
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Update(ctx context.Context, p *Product, updateStock bool) error
	Delete(ctx context.Context, id string) (bool, error)
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const cols = `id, module, name, description, material, size, colour, category_id, sub_category_id, utility,
	included, excluded, price::text, regular_price::text, stock, best_seller, trending, most_loved, cod_available,
	images, created_at, updated_at`

func scan(row pgx.Row) (Product, error) {
	var (
		p              Product
		price, regular string
	)
	err := row.Scan(&p.ID, &p.Module, &p.Name, &p.Description, &p.Material, &p.Size, &p.Colour,
		&p.CategoryID, &p.SubCategoryID, &p.Utility, &p.Included, &p.Excluded, &price, &regular,
		&p.Stock, &p.BestSeller, &p.Trending, &p.MostLoved, &p.CODAvailable, &p.Images,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return p, err
	}
	p.RegularPrice, err = decimal.NewFromString(regular)
	return p, err
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO products (id, module, name, description, material, size, colour, category_id, sub_category_id,
			utility, included, excluded, price, regular_price, stock, best_seller, trending, most_loved,
			cod_available, images, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13::numeric,$14::numeric,$15,$16,$17,$18,$19,$20,NOW(),NOW())
		RETURNING created_at, updated_at
	`, p.ID, p.Module, p.Name, p.Description, p.Material, p.Size, p.Colour, p.CategoryID, p.SubCategoryID,
		p.Utility, p.Included, p.Excluded, p.Price.String(), p.RegularPrice.String(), p.Stock,
		p.BestSeller, p.Trending, p.MostLoved, p.CODAvailable, p.Images,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := scan(r.db.QueryRow(ctx, `SELECT `+cols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.Normalize()
	rows, err := r.db.Query(ctx, `
		SELECT `+cols+`
		FROM products
		WHERE module = $1
		  AND ($2 = '' OR category_id = $2)
		  AND ($3 = '' OR sub_category_id = $3)
		  AND ($4 = '' OR name ILIKE '%'||$4||'%' OR description ILIKE '%'||$4||'%')
		  AND ($5::bool IS NULL OR best_seller = $5)
		  AND ($6::bool IS NULL OR trending = $6)
		  AND ($7::bool IS NULL OR most_loved = $7)
		ORDER BY created_at DESC
		LIMIT $8 OFFSET $9
	`, q.Module, q.CategoryID, q.SubCategoryID, q.Q, q.BestSeller, q.Trending, q.MostLoved, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update writes every editable field of p. Stock is only written when
// updateStock is set so concurrent order adjustments are not overwritten.
func (r *PGRepo) Update(ctx context.Context, p *Product, updateStock bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE products
		SET name = $2, description = $3, material = $4, size = $5, colour = $6,
		    category_id = $7, sub_category_id = $8, utility = $9, included = $10, excluded = $11,
		    price = $12::numeric, regular_price = $13::numeric,
		    stock = CASE WHEN $14 THEN $15 ELSE stock END,
		    best_seller = $16, trending = $17, most_loved = $18, cod_available = $19, images = $20,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING stock, updated_at
	`, p.ID, p.Name, p.Description, p.Material, p.Size, p.Colour, p.CategoryID, p.SubCategoryID, p.Utility,
		p.Included, p.Excluded, p.Price.String(), p.RegularPrice.String(), updateStock, p.Stock,
		p.BestSeller, p.Trending, p.MostLoved, p.CODAvailable, p.Images,
	).Scan(&p.Stock, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// AdjustStock adds delta to the stock in a single statement and refuses to
// go below zero. It returns the new stock.
func (r *PGRepo) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var stock int
	err := r.db.QueryRow(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING stock
	`, id, delta).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id=$1)`, id).Scan(&exists); err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrInsufficientStock
	}
	return 0, ErrNotFound
}
