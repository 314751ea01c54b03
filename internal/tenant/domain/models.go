// Package domain contains persistence models for tenants.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TenantStatus represents lifecycle states for a tenant.
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant captures one customer organization on the platform. The subdomain
// is derived from the company name once, at signup, and never changes.
type Tenant struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	FirstName    string       `gorm:"type:text"`
	LastName     string       `gorm:"type:text"`
	CompanyName  string       `gorm:"type:text;not null"`
	Email        string       `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string       `gorm:"type:text;not null"`
	Subdomain    string       `gorm:"type:text;not null;uniqueIndex"`
	Domain       string       `gorm:"type:text;not null"`
	Status       TenantStatus `gorm:"type:text;not null"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Tenant) TableName() string { return "tenants" }
