// Package token issues the access credential returned to tenants after
// signup and login.
package token

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mausamcrm/platform/internal/clock"
	"github.com/mausamcrm/platform/internal/config"
	"go.uber.org/fx"
)

const tokenTTL = 24 * time.Hour

var (
	ErrMissingSecret = errors.New("missing_jwt_secret")
	ErrInvalidToken  = errors.New("invalid_token")
)

type Claims struct {
	TenantID  string `json:"tenant_id"`
	Subdomain string `json:"subdomain"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	clock  clock.Clock
}

func NewIssuer(cfg config.Config, clk clock.Clock) *Issuer {
	return &Issuer{
		secret: []byte(cfg.AuthJWTSecret),
		clock:  clk,
	}
}

var Module = fx.Module("auth.token",
	fx.Provide(NewIssuer),
)

// Issue signs a token bound to the tenant, valid for one day.
func (i *Issuer) Issue(tenantID snowflake.ID, subdomain, email string) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := i.clock.Now()
	claims := Claims{
		TenantID:  tenantID.String(),
		Subdomain: subdomain,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse validates a token and returns its claims.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	if len(i.secret) == 0 {
		return nil, ErrMissingSecret
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.clock.Now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
