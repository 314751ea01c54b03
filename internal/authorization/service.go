// Package authorization guards the entitlement query endpoint with a
// pre-shared secret.
package authorization

import (
	"crypto/subtle"

	"github.com/mausamcrm/platform/internal/config"
	"go.uber.org/fx"
)

type Service struct {
	secret []byte
}

func NewService(cfg config.Config) *Service {
	return &Service{secret: []byte(cfg.EntitlementToken)}
}

var Module = fx.Module("authorization",
	fx.Provide(NewService),
)

// Authorize compares the presented token against the shared secret in
// constant time. An empty configured secret denies everything.
func (s *Service) Authorize(token string) bool {
	if len(s.secret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), s.secret) == 1
}
