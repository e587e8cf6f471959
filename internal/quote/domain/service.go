package domain

import (
	"context"
	"errors"
)

type CreateQuoteRequest struct {
	CompanyID string
	Title     string
}

type AddItemRequest struct {
	QuoteID     string
	Description string
	Price       string
	Quantity    int
	Frequency   string
}

type UpdateItemRequest struct {
	QuoteID     string
	ItemID      string
	Description *string
	Price       *string
	Quantity    *int
	Frequency   *string
}

type RemoveItemRequest struct {
	QuoteID string
	ItemID  string
}

// Service manages quotes. Every item mutation returns the quote with recomputed totals.
type Service interface {
	Create(context.Context, CreateQuoteRequest) (QuoteDetail, error)
	Get(ctx context.Context, id string) (QuoteDetail, error)
	ListByCompany(ctx context.Context, companyID string) ([]QuoteDetail, error)
	AddItem(context.Context, AddItemRequest) (QuoteDetail, error)
	UpdateItem(context.Context, UpdateItemRequest) (QuoteDetail, error)
	RemoveItem(context.Context, RemoveItemRequest) (QuoteDetail, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidTitle        = errors.New("invalid_title")
	ErrInvalidPrice        = errors.New("invalid_price")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidFrequency    = errors.New("invalid_frequency")
	ErrNotFound            = errors.New("not_found")
	ErrItemNotFound        = errors.New("quote_item_not_found")
)
