package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/pkg/db/pagination"
)

type CreateCompanyRequest struct {
	Name         string
	BillingEmail string
	Metadata     map[string]any
}

type ListCompanyRequest struct {
	PageToken string
	PageSize  int32
	Name      string
}

type ListCompanyFilter struct {
	Name string
}

type ListCompanyResponse struct {
	pagination.PageInfo
	Companies []Company `json:"companies"`
}

type CreateProjectRequest struct {
	CompanyID string
	Name      string
	Status    string
}

type CreateClientUserRequest struct {
	CompanyID string
	Email     string
	Name      string
	Status    string
}

type SetStatusRequest struct {
	ID     string
	Status string
}

type Service interface {
	Create(context.Context, CreateCompanyRequest) (Company, error)
	GetByID(context.Context, string) (Company, error)
	Get(ctx context.Context, id snowflake.ID) (Company, error)
	List(context.Context, ListCompanyRequest) (ListCompanyResponse, error)

	CreateProject(context.Context, CreateProjectRequest) (Project, error)
	SetProjectStatus(context.Context, SetStatusRequest) (Project, error)
	CreateClientUser(context.Context, CreateClientUserRequest) (ClientUser, error)
	SetClientUserStatus(context.Context, SetStatusRequest) (ClientUser, error)

	// Counts returns the ACTIVE project and client user counts of a company.
	Counts(ctx context.Context, companyID snowflake.ID) (CompanyCounts, error)
	// AcceptContract stamps the contract acceptance time once; later calls keep the first stamp.
	AcceptContract(ctx context.Context, companyID snowflake.ID, at time.Time) (Company, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidEmail        = errors.New("invalid_email")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrNotFound            = errors.New("not_found")
	ErrProjectNotFound     = errors.New("project_not_found")
	ErrClientUserNotFound  = errors.New("client_user_not_found")
)
