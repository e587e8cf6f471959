package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Action names a recorded mutation as "<area>.<record>.<verb>".
type Action string

const (
	ActionBillingSettingsUpdate Action = "billing.settings.update"
	ActionBillingItemCreate     Action = "billing.item.create"
	ActionBillingItemUpdate     Action = "billing.item.update"
	ActionBillingItemDelete     Action = "billing.item.delete"
	ActionContractAccept        Action = "company.contract.accept"
)

type TargetType string

const (
	TargetBillingSettings  TargetType = "billing_settings"
	TargetSubscriptionItem TargetType = "subscription_item"
	TargetCompany          TargetType = "company"
)

// Entry is a mutation handed to the audit service.
type Entry struct {
	Action     Action
	TargetType TargetType
	TargetID   snowflake.ID
	Metadata   map[string]any
}

type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	Action     Action            `gorm:"not null" json:"action"`
	TargetType TargetType        `gorm:"not null" json:"target_type"`
	TargetID   *string           `json:"target_id,omitempty"`
	RequestID  *string           `json:"request_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

type AuditCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	OrgID      snowflake.ID
	Action     string
	TargetType string
	TargetID   string
	StartAt    *time.Time
	EndAt      *time.Time
	Cursor     *AuditCursor
	Limit      int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	// List returns up to Limit+1 rows, newest first, so callers can detect a next page.
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AuditLog, error)
}
