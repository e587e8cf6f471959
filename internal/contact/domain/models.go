package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Contact struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	CompanyID snowflake.ID      `gorm:"not null;index" json:"company_id"`
	FirstName string            `gorm:"not null" json:"first_name"`
	LastName  string            `gorm:"not null;default:''" json:"last_name,omitempty"`
	Email     string            `gorm:"not null;default:''" json:"email,omitempty"`
	Phone     string            `gorm:"not null;default:''" json:"phone,omitempty"`
	JobTitle  string            `gorm:"not null;default:''" json:"job_title,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type CreateContactRequest struct {
	CompanyID string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	JobTitle  string
	Metadata  map[string]any
}

type ListContactRequest struct {
	CompanyID string
}

type Service interface {
	Create(context.Context, CreateContactRequest) (Contact, error)
	GetByID(ctx context.Context, id string) (Contact, error)
	ListByCompany(context.Context, ListContactRequest) ([]Contact, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrNotFound            = errors.New("not_found")
)
