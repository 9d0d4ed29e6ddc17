// Package auth issues and verifies bearer tokens for the admin back-office,
// the vendor portal and service-to-service calls, and enforces role
// permissions on routes.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "decor-ecom"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleVendor  Role = "vendor"
	RoleService Role = "service"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionRevoked     = errors.New("session revoked")
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	Subject   string    `json:"subject"`
	Role      Role      `json:"role"`
	SessionID string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// TokenResponse is returned by the login endpoints.
// swagger:model TokenResponse
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Role      Role      `json:"role"`
}

type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a session token for sub. The jti doubles as the session id.
func (i *Issuer) Issue(sub string, role Role) (string, Principal, error) {
	return i.issue(sub, role, i.ttl)
}

// IssueService signs a short-lived token for calls between services.
func (i *Issuer) IssueService(name string) (string, error) {
	tok, _, err := i.issue(name, RoleService, 5*time.Minute)
	return tok, err
}

func (i *Issuer) issue(sub string, role Role, ttl time.Duration) (string, Principal, error) {
	now := i.now()
	p := Principal{
		Subject:   sub,
		Role:      role,
		SessionID: uuid.NewString(),
		ExpiresAt: now.Add(ttl).Truncate(time.Second),
	}
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   sub,
			ID:        p.SessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", Principal{}, err
	}
	return signed, p, nil
}

func (i *Issuer) Parse(token string) (*Principal, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	switch claims.Role {
	case RoleAdmin, RoleVendor, RoleService:
	default:
		return nil, ErrInvalidToken
	}
	p := &Principal{Subject: claims.Subject, Role: claims.Role, SessionID: claims.ID}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}
