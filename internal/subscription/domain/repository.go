package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	// FindByTenant returns the tenant's subscriptions newest first; the head
	// of the list is the authoritative record.
	FindByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]Subscription, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	// UpdateFields applies a partial update to the tenant's most recent
	// subscription record.
	UpdateFields(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, fields map[string]any) error
	// UpdateFieldsByID applies a partial update to one specific record.
	UpdateFieldsByID(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
	DeleteByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) error
}
