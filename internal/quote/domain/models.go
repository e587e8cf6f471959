package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
)

type Frequency string

const (
	FrequencyOneTime Frequency = "ONE_TIME"
	FrequencyMonthly Frequency = "MONTHLY"
)

func (f Frequency) Valid() bool {
	return f == FrequencyOneTime || f == FrequencyMonthly
}

type Quote struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"organization_id"`
	CompanyID snowflake.ID `gorm:"not null;index" json:"company_id"`
	Title     string       `gorm:"not null" json:"title"`
	Status    Status       `gorm:"not null" json:"status"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type QuoteItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrgID       snowflake.ID    `gorm:"not null;index" json:"organization_id"`
	QuoteID     snowflake.ID    `gorm:"not null;index" json:"quote_id"`
	Description string          `gorm:"not null;default:''" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Frequency   Frequency       `gorm:"not null" json:"frequency"`
	Position    int             `gorm:"not null;default:0" json:"position"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// PricedItem is a quote line with its derived net price.
type PricedItem struct {
	QuoteItem
	NetPrice decimal.Decimal `json:"net_price"`
}

type QuoteTotals struct {
	Items        []PricedItem    `json:"items"`
	TotalOneTime decimal.Decimal `json:"total_one_time"`
	TotalMonthly decimal.Decimal `json:"total_monthly"`
}

// QuoteDetail is a quote with freshly derived totals.
type QuoteDetail struct {
	Quote
	QuoteTotals
}
