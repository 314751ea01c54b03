package authorization

import (
	"testing"

	"github.com/mausamcrm/platform/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	svc := NewService(config.Config{EntitlementToken: "shared-secret"})

	assert.True(t, svc.Authorize("shared-secret"))
	assert.False(t, svc.Authorize("wrong"))
	assert.False(t, svc.Authorize(""))
}

func TestAuthorizeEmptySecretDeniesAll(t *testing.T) {
	svc := NewService(config.Config{})

	assert.False(t, svc.Authorize(""))
	assert.False(t, svc.Authorize("anything"))
}
