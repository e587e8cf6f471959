package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

type Company struct {
	ID                 snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID              snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	Name               string            `gorm:"not null" json:"name"`
	Slug               string            `gorm:"not null" json:"slug"`
	BillingEmail       string            `gorm:"not null;default:''" json:"billing_email,omitempty"`
	ContractAcceptedAt *time.Time        `json:"contract_accepted_at,omitempty"`
	Metadata           datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type Project struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"organization_id"`
	CompanyID snowflake.ID `gorm:"not null;index" json:"company_id"`
	Name      string       `gorm:"not null" json:"name"`
	Status    Status       `gorm:"not null" json:"status"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ClientUser is a login of the customer company, counted for per-user billing.
type ClientUser struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index" json:"organization_id"`
	CompanyID snowflake.ID `gorm:"not null;index" json:"company_id"`
	Email     string       `gorm:"not null" json:"email"`
	Name      string       `gorm:"not null;default:''" json:"name,omitempty"`
	Status    Status       `gorm:"not null" json:"status"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// CompanyCounts holds the ACTIVE project and client user counts of a company.
type CompanyCounts struct {
	ActiveProjects int `json:"active_projects"`
	ActiveUsers    int `json:"active_users"`
}
