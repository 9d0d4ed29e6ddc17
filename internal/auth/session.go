package auth

import (
	"context"
	"sync"
	"time"
)

// SessionStore tracks live login sessions so logout can revoke a token
// before it expires.
type SessionStore interface {
	Create(ctx context.Context, p Principal) error
	Exists(ctx context.Context, id string) (bool, error)
	Revoke(ctx context.Context, id string) error
}

// MemorySessions keeps sessions in process. Used when no Redis is configured
// and in tests.
type MemorySessions struct {
	mu  sync.Mutex
	exp map[string]time.Time
	now func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{exp: make(map[string]time.Time), now: time.Now}
}

func (m *MemorySessions) Create(_ context.Context, p Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exp[p.SessionID] = p.ExpiresAt
	return nil
}

func (m *MemorySessions) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.exp[id]
	if !ok {
		return false, nil
	}
	if !exp.IsZero() && m.now().After(exp) {
		delete(m.exp, id)
		return false, nil
	}
	return true, nil
}

func (m *MemorySessions) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.exp, id)
	return nil
}

// Verifier checks signature, expiry and, for people, that the session is
// still live.
type Verifier struct {
	Issuer   *Issuer
	Sessions SessionStore
}

func (v *Verifier) Verify(ctx context.Context, token string) (*Principal, error) {
	p, err := v.Issuer.Parse(token)
	if err != nil {
		return nil, err
	}
	if p.Role == RoleService || v.Sessions == nil {
		return p, nil
	}
	ok, err := v.Sessions.Exists(ctx, p.SessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionRevoked
	}
	return p, nil
}

// Login issues a token for sub and registers its session.
func (v *Verifier) Login(ctx context.Context, sub string, role Role) (string, Principal, error) {
	tok, p, err := v.Issuer.Issue(sub, role)
	if err != nil {
		return "", Principal{}, err
	}
	if v.Sessions != nil {
		if err := v.Sessions.Create(ctx, p); err != nil {
			return "", Principal{}, err
		}
	}
	return tok, p, nil
}

func (v *Verifier) Logout(ctx context.Context, p *Principal) error {
	if v.Sessions == nil || p == nil {
		return nil
	}
	return v.Sessions.Revoke(ctx, p.SessionID)
}
