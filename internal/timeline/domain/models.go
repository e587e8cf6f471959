package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	invitationdomain "github.com/smallbiznis/crm/internal/invitation/domain"
	"gorm.io/datatypes"
)

type ActivityType string

const (
	ActivityNote    ActivityType = "NOTE"
	ActivityCall    ActivityType = "CALL"
	ActivityEmail   ActivityType = "EMAIL"
	ActivityMeeting ActivityType = "MEETING"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityNote, ActivityCall, ActivityEmail, ActivityMeeting:
		return true
	default:
		return false
	}
}

type Activity struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID      `gorm:"not null;index" json:"organization_id"`
	CompanyID  snowflake.ID      `gorm:"not null;index" json:"company_id"`
	Type       ActivityType      `gorm:"not null" json:"type"`
	Subject    string            `gorm:"not null" json:"subject"`
	Body       string            `gorm:"not null;default:''" json:"body,omitempty"`
	OccurredAt time.Time         `gorm:"not null" json:"occurred_at"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

type EntryKind string

const (
	EntryActivity         EntryKind = "activity"
	EntryInvitation       EntryKind = "invitation"
	EntryContractAccepted EntryKind = "contract_accepted"
)

// Entry is one row of a company timeline. Exactly one payload is set, except
// for contract acceptance which carries only the timestamp.
type Entry struct {
	Kind       EntryKind                    `json:"kind"`
	OccurredAt time.Time                    `json:"occurred_at"`
	Activity   *Activity                    `json:"activity,omitempty"`
	Invitation *invitationdomain.Invitation `json:"invitation,omitempty"`
}

type CreateActivityRequest struct {
	CompanyID  string
	Type       string
	Subject    string
	Body       string
	OccurredAt *time.Time
	Metadata   map[string]any
}

type Timeline struct {
	CompanyID snowflake.ID `json:"company_id"`
	Entries   []Entry      `json:"entries"`
}

type Service interface {
	CreateActivity(context.Context, CreateActivityRequest) (Activity, error)
	AcceptContract(ctx context.Context, companyID string) (companydomain.Company, error)
	Get(ctx context.Context, companyID string) (Timeline, error)
}

var (
	ErrInvalidActivityType = errors.New("invalid_activity_type")
	ErrInvalidSubject      = errors.New("invalid_subject")
)
