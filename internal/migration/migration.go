// Package migration creates the platform schema on startup so a fresh
// database is usable without manual setup.
package migration

import (
	subscriptiondomain "github.com/mausamcrm/platform/internal/subscription/domain"
	tenantdomain "github.com/mausamcrm/platform/internal/tenant/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Run),
)

func Run(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&tenantdomain.Tenant{},
		&subscriptiondomain.Subscription{},
	)
}
