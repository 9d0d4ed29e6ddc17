package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/decor-ecom/internal/platform/postgres"
)

var (
	ErrNotFound     = errors.New("coupon not found")
	ErrAlreadyExist = errors.New("coupon code already exists")
)

type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	GetByID(ctx context.Context, id string) (*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id string) (bool, error)
	Redeem(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*Coupon, error)
	Release(ctx context.Context, id string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const cols = `id, code, discount_percentage, max_uses, used_count, min_order_amount::text, expiry_date, is_active, created_at, updated_at`

func scan(row pgx.Row) (*Coupon, error) {
	var (
		c         Coupon
		minAmount string
	)
	if err := row.Scan(&c.ID, &c.Code, &c.DiscountPercentage, &c.MaxUses, &c.UsedCount, &minAmount,
		&c.ExpiryDate, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var err error
	c.MinOrderAmount, err = decimal.NewFromString(minAmount)
	return &c, err
}

func (r *PGRepo) Create(ctx context.Context, c *Coupon) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		INSERT INTO coupons (id, code, discount_percentage, max_uses, used_count, min_order_amount, expiry_date, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,0,$5::numeric,$6,$7,NOW(),NOW())
		RETURNING created_at, updated_at
	`, c.ID, c.Code, c.DiscountPercentage, c.MaxUses, c.MinOrderAmount.String(), c.ExpiryDate, c.IsActive,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if postgres.IsUniqueViolation(err) {
		return ErrAlreadyExist
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return scan(r.db.QueryRow(ctx, `SELECT `+cols+` FROM coupons WHERE id=$1`, id))
}

func (r *PGRepo) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return scan(r.db.QueryRow(ctx, `SELECT `+cols+` FROM coupons WHERE code=$1`, NormalizeCode(code)))
}

func (r *PGRepo) List(ctx context.Context) ([]Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+cols+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Coupon{}
	for rows.Next() {
		c, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Update writes the editable fields. used_count is owned by Redeem and
// Release and is never written here.
func (r *PGRepo) Update(ctx context.Context, c *Coupon) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE coupons
		SET code = $2, discount_percentage = $3, max_uses = $4, min_order_amount = $5::numeric,
		    expiry_date = $6, is_active = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING used_count, updated_at
	`, c.ID, c.Code, c.DiscountPercentage, c.MaxUses, c.MinOrderAmount.String(), c.ExpiryDate, c.IsActive,
	).Scan(&c.UsedCount, &c.UpdatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case postgres.IsUniqueViolation(err):
		return ErrAlreadyExist
	case postgres.IsCheckViolation(err):
		return &InvalidError{Reason: "maxUses cannot be below the uses already made"}
	}
	return err
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM coupons WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// Redeem consumes one use in a single conditional statement, so used_count
// can never pass max_uses. On refusal the stored coupon is re-read to name
// the reason.
func (r *PGRepo) Redeem(ctx context.Context, code string, subtotal decimal.Decimal, now time.Time) (*Coupon, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c, err := scan(r.db.QueryRow(ctx, `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE code = $1 AND is_active AND expiry_date > $2
		  AND used_count < max_uses AND min_order_amount <= $3::numeric
		RETURNING `+cols, NormalizeCode(code), now, subtotal.String()))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	cur, err := r.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if reason := cur.Check(subtotal, now); reason != nil {
		return nil, reason
	}
	return nil, ErrExhausted
}

// Release gives back one use after a failed order.
func (r *PGRepo) Release(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		UPDATE coupons SET used_count = used_count - 1, updated_at = NOW()
		WHERE id = $1 AND used_count > 0
	`, id)
	return err
}
