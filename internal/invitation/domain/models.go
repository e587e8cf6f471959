package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type InvitationStatus string

const (
	Pending  InvitationStatus = "PENDING"
	Accepted InvitationStatus = "ACCEPTED"
)

// Invitation asks a client user to join the company portal.
type Invitation struct {
	ID        snowflake.ID     `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID     `gorm:"not null;index" json:"organization_id"`
	CompanyID snowflake.ID     `gorm:"not null;index;uniqueIndex:ux_invitations_company_email" json:"company_id"`
	Email     string           `gorm:"not null;uniqueIndex:ux_invitations_company_email" json:"email"`
	Role      string           `gorm:"not null" json:"role"`
	Status    InvitationStatus `gorm:"not null" json:"status"`
	SentAt    time.Time        `gorm:"not null" json:"sent_at"`
	CreatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

type InviteRequest struct {
	CompanyID string
	Email     string
	Role      string
}

type Service interface {
	Invite(context.Context, InviteRequest) (Invitation, error)
	ListByCompany(ctx context.Context, companyID snowflake.ID) ([]Invitation, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidRole         = errors.New("invalid_role")
	ErrAlreadyInvited      = errors.New("already_invited")
)
