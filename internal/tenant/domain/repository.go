package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, tenant *Tenant) error
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Tenant, error)
	FindBySubdomain(ctx context.Context, db *gorm.DB, subdomain string) (*Tenant, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
