// Package domain contains persistence models and the entitlement rules for
// tenant subscriptions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status represents lifecycle states for a subscription. Billing providers
// may report states outside this set; those are stored verbatim and treated
// as not entitled.
type Status string

const (
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
	StatusCanceled Status = "canceled"

	// StatusNotSubscribed is never persisted; it is reported when a tenant
	// has no subscription record at all.
	StatusNotSubscribed Status = "not_subscribed"
)

// Interval is the billing period length of a plan.
const (
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// Subscription captures a tenant's billing agreement. A tenant is expected
// to have one relevant subscription at a time; readers always take the
// most recently created record as authoritative.
type Subscription struct {
	ID                 snowflake.ID `gorm:"primaryKey"`
	TenantID           snowflake.ID `gorm:"not null;index"`
	PlanID             string       `gorm:"type:text;not null"`
	Interval           string       `gorm:"type:text"`
	TrialDays          int          `gorm:"not null;default:0"`
	CurrentPeriodStart *time.Time   `gorm:""`
	CurrentPeriodEnd   *time.Time   `gorm:""`
	Status             Status       `gorm:"type:text;not null"`
	CancelAtPeriodEnd  bool         `gorm:"not null;default:false"`
	CanceledAt         *time.Time   `gorm:""`
	CreatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
