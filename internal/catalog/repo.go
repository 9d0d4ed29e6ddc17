package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/decor-ecom/internal/module"
)

var (
	ErrNotFound        = errors.New("category not found")
	ErrVersionConflict = errors.New("category was modified by someone else")
)

type Repository interface {
	ListCategories(ctx context.Context, m module.Module, onlyActive bool) ([]Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, id string, p Patch) (*Category, error)
	DeleteCategory(ctx context.Context, id string) (bool, error)
	ReorderCategories(ctx context.Context, m module.Module, order []Position) error

	ListSubCategories(ctx context.Context, categoryID string, onlyActive bool) ([]SubCategory, error)
	GetSubCategory(ctx context.Context, id string) (*SubCategory, error)
	CreateSubCategory(ctx context.Context, s *SubCategory) error
	UpdateSubCategory(ctx context.Context, id string, p Patch) (*SubCategory, error)
	DeleteSubCategory(ctx context.Context, id string) (bool, error)
	ReorderSubCategories(ctx context.Context, categoryID string, order []Position) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const (
	nodeCols = `id, module, name, description, image_url, video_url, sort_order, is_active, version, created_at, updated_at`
	subCols  = nodeCols + `, category_id`
)

func scanNode(row pgx.Row, extra ...any) (Category, error) {
	var c Category
	dest := append([]any{&c.ID, &c.Module, &c.Name, &c.Description, &c.ImageURL, &c.VideoURL,
		&c.SortOrder, &c.IsActive, &c.Version, &c.CreatedAt, &c.UpdatedAt}, extra...)
	err := row.Scan(dest...)
	return c, err
}

func scanSub(row pgx.Row) (SubCategory, error) {
	var parent string
	c, err := scanNode(row, &parent)
	return SubCategory{Category: c, CategoryID: parent}, err
}

func (r *PGRepo) ListCategories(ctx context.Context, m module.Module, onlyActive bool) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+nodeCols+`
		FROM categories
		WHERE module = $1 AND ($2 = FALSE OR is_active)
		ORDER BY sort_order, created_at
	`, m, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		c, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetCategory(ctx context.Context, id string) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c, err := scanNode(r.db.QueryRow(ctx, `SELECT `+nodeCols+` FROM categories WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGRepo) CreateCategory(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO categories (id, module, name, description, image_url, video_url, sort_order, is_active, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,1,NOW(),NOW())
		RETURNING version, created_at, updated_at
	`, c.ID, c.Module, c.Name, c.Description, c.ImageURL, c.VideoURL, c.SortOrder, c.IsActive,
	).Scan(&c.Version, &c.CreatedAt, &c.UpdatedAt)
}

func (r *PGRepo) UpdateCategory(ctx context.Context, id string, p Patch) (*Category, error) {
	c, err := r.update(ctx, "categories", nodeCols, id, p, func(row pgx.Row) (any, error) {
		c, err := scanNode(row)
		return &c, err
	})
	if err != nil {
		return nil, err
	}
	return c.(*Category), nil
}

func (r *PGRepo) DeleteCategory(ctx context.Context, id string) (bool, error) {
	return r.delete(ctx, "categories", id)
}

func (r *PGRepo) ReorderCategories(ctx context.Context, m module.Module, order []Position) error {
	return r.reorder(ctx, "categories", "module", string(m), order)
}

func (r *PGRepo) ListSubCategories(ctx context.Context, categoryID string, onlyActive bool) ([]SubCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+subCols+`
		FROM subcategories
		WHERE category_id = $1 AND ($2 = FALSE OR is_active)
		ORDER BY sort_order, created_at
	`, categoryID, onlyActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SubCategory{}
	for rows.Next() {
		s, err := scanSub(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetSubCategory(ctx context.Context, id string) (*SubCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s, err := scanSub(r.db.QueryRow(ctx, `SELECT `+subCols+` FROM subcategories WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepo) CreateSubCategory(ctx context.Context, s *SubCategory) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO subcategories (id, category_id, module, name, description, image_url, video_url, sort_order, is_active, version, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,1,NOW(),NOW())
		RETURNING version, created_at, updated_at
	`, s.ID, s.CategoryID, s.Module, s.Name, s.Description, s.ImageURL, s.VideoURL, s.SortOrder, s.IsActive,
	).Scan(&s.Version, &s.CreatedAt, &s.UpdatedAt)
}

func (r *PGRepo) UpdateSubCategory(ctx context.Context, id string, p Patch) (*SubCategory, error) {
	s, err := r.update(ctx, "subcategories", subCols, id, p, func(row pgx.Row) (any, error) {
		s, err := scanSub(row)
		return &s, err
	})
	if err != nil {
		return nil, err
	}
	return s.(*SubCategory), nil
}

func (r *PGRepo) DeleteSubCategory(ctx context.Context, id string) (bool, error) {
	return r.delete(ctx, "subcategories", id)
}

func (r *PGRepo) ReorderSubCategories(ctx context.Context, categoryID string, order []Position) error {
	return r.reorder(ctx, "subcategories", "category_id", categoryID, order)
}

// update applies p; a version mismatch is told apart from a missing row
// with a follow-up existence check.
func (r *PGRepo) update(ctx context.Context, table, cols, id string, p Patch, scan func(pgx.Row) (any, error)) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := scan(r.db.QueryRow(ctx, fmt.Sprintf(`
		UPDATE %s
		SET name        = COALESCE($2, name),
		    description = COALESCE($3, description),
		    image_url   = COALESCE($4, image_url),
		    video_url   = COALESCE($5, video_url),
		    sort_order  = COALESCE($6, sort_order),
		    is_active   = COALESCE($7, is_active),
		    version     = version + 1,
		    updated_at  = NOW()
		WHERE id = $1 AND ($8::int IS NULL OR version = $8)
		RETURNING %s
	`, table, cols), id, p.Name, p.Description, p.ImageURL, p.VideoURL, p.SortOrder, p.IsActive, p.Version))
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	var exists bool
	if err := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id=$1)`, table), id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrVersionConflict
	}
	return nil, ErrNotFound
}

func (r *PGRepo) delete(ctx context.Context, table, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=$1`, table), id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// reorder locks the sibling set, checks the submission covers it, and
// writes the renumbered positions in one transaction.
func (r *PGRepo) reorder(ctx context.Context, table, siblingCol, siblingVal string, order []Position) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE %s = $1 FOR UPDATE`, table, siblingCol), siblingVal)
	if err != nil {
		return err
	}
	siblings, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return err
	}

	ranked, err := Renumber(order, siblings)
	if err != nil {
		return err
	}
	ids := make([]string, len(ranked))
	ords := make([]int32, len(ranked))
	for i, p := range ranked {
		ids[i] = p.ID
		ords[i] = int32(p.SortOrder)
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf(`
		UPDATE %s AS t
		SET sort_order = v.ord, version = t.version + 1, updated_at = NOW()
		FROM unnest($1::text[], $2::int[]) AS v(id, ord)
		WHERE t.id = v.id
	`, table), ids, ords); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
