package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/mausamcrm/platform/internal/subscription/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() subscriptiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, subscription *subscriptiondomain.Subscription) error {
	return db.WithContext(ctx).Create(subscription).Error
}

func (r *repo) FindByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]subscriptiondomain.Subscription, error) {
	var subscriptions []subscriptiondomain.Subscription
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC, id DESC").
		Find(&subscriptions).Error
	if err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*subscriptiondomain.Subscription, error) {
	var subscription subscriptiondomain.Subscription
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&subscription).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, fields map[string]any) error {
	subscriptions, err := r.FindByTenant(ctx, db, tenantID)
	if err != nil {
		return err
	}
	if len(subscriptions) == 0 {
		return gorm.ErrRecordNotFound
	}
	return r.UpdateFieldsByID(ctx, db, subscriptions[0].ID, fields)
}

func (r *repo) UpdateFieldsByID(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return db.WithContext(ctx).
		Model(&subscriptiondomain.Subscription{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repo) DeleteByTenant(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) error {
	return db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Delete(&subscriptiondomain.Subscription{}).Error
}
