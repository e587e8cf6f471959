package domain

import (
	"context"
	"errors"
)

type UpsertSettingsRequest struct {
	CompanyID   string
	BillingType string
	BillingDay  int
}

type CreateItemRequest struct {
	CompanyID      string
	ExternalItemID string
	Code           string
	Description    string
	Price          string
	CountType      string
	ManualQuantity *int
	Position       *int
}

// UpdateItemRequest carries a partial update; nil fields are left unchanged.
type UpdateItemRequest struct {
	ID             string
	ExternalItemID *string
	Code           *string
	Description    *string
	Price          *string
	CountType      *string
	ManualQuantity *int
	Position       *int
}

type Service interface {
	GetSettings(ctx context.Context, companyID string) (BillingSettings, error)
	UpsertSettings(ctx context.Context, req UpsertSettingsRequest) (BillingSettings, error)

	ListItems(ctx context.Context, companyID string) ([]SubscriptionItem, error)
	CreateItem(ctx context.Context, req CreateItemRequest) (SubscriptionItem, error)
	UpdateItem(ctx context.Context, req UpdateItemRequest) (SubscriptionItem, error)
	DeleteItem(ctx context.Context, id string) error

	GetSummary(ctx context.Context, companyID string) (BillingSummary, error)
}

var (
	ErrInvalidOrganization   = errors.New("invalid_organization")
	ErrInvalidID             = errors.New("invalid_id")
	ErrInvalidBillingType    = errors.New("invalid_billing_type")
	ErrInvalidBillingDay     = errors.New("invalid_billing_day")
	ErrInvalidPrice          = errors.New("invalid_price")
	ErrInvalidCountType      = errors.New("invalid_count_type")
	ErrInvalidManualQuantity = errors.New("invalid_manual_quantity")
	ErrInvalidPosition       = errors.New("invalid_position")
	ErrItemNotFound          = errors.New("subscription_item_not_found")
)
