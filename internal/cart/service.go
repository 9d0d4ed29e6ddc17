package cart

import (
	"context"
	"errors"
	"time"
)

const defaultAttempts = 3

// Service applies read-modify-write mutations to a cart, retrying when a
// concurrent writer wins the version check.
type Service struct {
	Repo     Repository
	Attempts int
	Now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{Repo: repo, Attempts: defaultAttempts, Now: time.Now}
}

// Load returns the owner's cart, or a new empty one.
func (s *Service) Load(ctx context.Context, owner string) (*Cart, error) {
	c, err := s.Repo.Get(ctx, owner)
	if errors.Is(err, ErrNotFound) {
		return New(owner), nil
	}
	return c, err
}

// Mutate loads the cart, runs fn and saves. fn may run more than once.
func (s *Service) Mutate(ctx context.Context, owner string, fn func(*Cart) error) (*Cart, error) {
	attempts := s.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	for i := 0; i < attempts; i++ {
		c, err := s.Load(ctx, owner)
		if err != nil {
			return nil, err
		}
		if err := fn(c); err != nil {
			return nil, err
		}
		now := s.Now().UTC()
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = now
		err = s.Repo.Save(ctx, c)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, ErrConflict
}
