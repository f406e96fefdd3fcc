package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// PermissionList is a set of named permissions stored as a JSON array column
type PermissionList []string

// Value serializes the list for storage. An empty list is stored as "[]",
// never NULL, so a round trip always yields a non-nil slice.
func (p PermissionList) Value() (driver.Value, error) {
	if p == nil {
		p = PermissionList{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal permission list: %w", err)
	}
	return string(data), nil
}

// Scan deserializes the list from storage
func (p *PermissionList) Scan(value interface{}) error {
	if value == nil {
		*p = PermissionList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported permission list column type %T", value)
	}

	if len(data) == 0 {
		*p = PermissionList{}
		return nil
	}

	return json.Unmarshal(data, p)
}

// Config represents the global configuration for the single-tenant deployment
// This is a singleton model (only one row should exist)
type Config struct {
	BaseModel
	// Authentication configuration
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"` // Auto-generated on first setup (64 hex chars)

	// Login audit retention
	AuditRetentionDays int        `json:"audit_retention_days" gorm:"not null;default:90"`
	AuditPruneSchedule string     `json:"audit_prune_schedule"` // Cron expression, e.g. "0 3 * * *" (3am daily), empty = no pruning
	LastAuditPruneAt   *time.Time `json:"last_audit_prune_at"`  // When the last prune completed
	NextAuditPruneAt   *time.Time `json:"next_audit_prune_at"`  // Calculated from the cron schedule
}

// AdminUser represents an administrator account for the console
type AdminUser struct {
	BaseModel
	Email        string         `json:"email" gorm:"unique;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	Name         string         `json:"name"`
	Role         string         `json:"role" gorm:"not null;default:''"` // superadmin, admin, or an operational role
	Permissions  PermissionList `json:"permissions" gorm:"type:text"`
	IsActive     bool           `json:"is_active" gorm:"not null;default:true"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// LoginAudit records one successful authentication, written by the worker
type LoginAudit struct {
	BaseModel
	AdminID string    `json:"admin_id" gorm:"not null;index"`
	Email   string    `json:"email" gorm:"not null"`
	LoginAt time.Time `json:"login_at" gorm:"not null"`

	// Relationships
	Admin *AdminUser `json:"admin,omitempty" gorm:"foreignKey:AdminID;references:ID;constraint:OnDelete:CASCADE"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&AdminUser{}, &Config{}, &LoginAudit{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}
