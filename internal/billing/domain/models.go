package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type BillingType string

const (
	BillingTypeStandard BillingType = "STANDARD"
	BillingTypeCustom   BillingType = "CUSTOM"
)

func (t BillingType) Valid() bool {
	return t == BillingTypeStandard || t == BillingTypeCustom
}

// CountType selects where the quantity of a subscription item comes from.
type CountType string

const (
	CountTypeManual         CountType = "MANUAL"
	CountTypeActiveProjects CountType = "ACTIVE_PROJECTS"
	CountTypeActiveUsers    CountType = "ACTIVE_USERS"
)

func (t CountType) Valid() bool {
	switch t {
	case CountTypeManual, CountTypeActiveProjects, CountTypeActiveUsers:
		return true
	default:
		return false
	}
}

const (
	MinBillingDay = 1
	MaxBillingDay = 31
)

type BillingSettings struct {
	CompanyID   snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"company_id"`
	OrgID       snowflake.ID `gorm:"not null;index" json:"organization_id"`
	BillingType BillingType  `gorm:"not null" json:"billing_type"`
	BillingDay  int          `gorm:"not null" json:"billing_day"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (BillingSettings) TableName() string { return "billing_settings" }

type SubscriptionItem struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID          snowflake.ID    `gorm:"not null;index" json:"organization_id"`
	CompanyID      snowflake.ID    `gorm:"not null;index" json:"company_id"`
	ExternalItemID string          `gorm:"not null;default:''" json:"external_item_id,omitempty"`
	Code           string          `gorm:"not null;default:''" json:"code,omitempty"`
	Description    string          `gorm:"not null;default:''" json:"description,omitempty"`
	Price          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	CountType      CountType       `gorm:"not null" json:"count_type"`
	ManualQuantity *int            `json:"manual_quantity,omitempty"`
	Position       int             `gorm:"not null;default:0" json:"position"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ComputedLineItem is a subscription item with its derived quantity and subtotal.
type ComputedLineItem struct {
	SubscriptionItem
	CalculatedQuantity int             `json:"calculated_quantity"`
	Subtotal           decimal.Decimal `json:"subtotal"`
}

type AnomalyReason string

const (
	AnomalyNegativePrice          AnomalyReason = "negative_price"
	AnomalyNegativeManualQuantity AnomalyReason = "negative_manual_quantity"
	AnomalyMissingManualQuantity  AnomalyReason = "missing_manual_quantity"
	AnomalyNegativeCount          AnomalyReason = "negative_count"
	AnomalyUnknownCountType       AnomalyReason = "unknown_count_type"
)

// Anomaly flags an item whose stored values were clamped during calculation.
type Anomaly struct {
	ItemID snowflake.ID  `json:"item_id"`
	Reason AnomalyReason `json:"reason"`
}

// BillingSummary is recomputed on every read and never persisted.
type BillingSummary struct {
	CompanyID      snowflake.ID       `json:"company_id,omitempty"`
	BillingType    BillingType        `json:"billing_type"`
	BillingDay     int                `json:"billing_day,omitempty"`
	Currency       string             `json:"currency,omitempty"`
	Items          []ComputedLineItem `json:"items"`
	Total          decimal.Decimal    `json:"total"`
	ActiveProjects int                `json:"active_projects"`
	ActiveUsers    int                `json:"active_users"`
	Anomalies      []Anomaly          `json:"anomalies,omitempty"`
}
