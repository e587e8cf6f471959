package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/clock"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/orgcontext"
	"github.com/smallbiznis/crm/internal/quote/domain"
	"github.com/smallbiznis/crm/internal/quote/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockCompanySvc struct {
	companydomain.Service
	mock.Mock
}

func (m *mockCompanySvc) GetByID(ctx context.Context, id string) (companydomain.Company, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(companydomain.Company), args.Error(1)
}

func setup(t *testing.T) (domain.Service, context.Context, companydomain.Company) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Quote{}, &domain.QuoteItem{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	company := companydomain.Company{ID: node.Generate(), OrgID: node.Generate(), Name: "Acme"}

	companies := &mockCompanySvc{}
	companies.On("GetByID", mock.Anything, company.ID.String()).Return(company, nil)
	companies.On("GetByID", mock.Anything, mock.Anything).Return(companydomain.Company{}, companydomain.ErrNotFound)

	svc := New(Params{
		DB:            db,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         clock.NewFakeClock(time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)),
		Repo:          repository.Provide(),
		CompanySvc:    companies,
		BillingConfig: config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
	})
	return svc, orgcontext.WithOrgID(context.Background(), company.OrgID), company
}

func TestQuoteItemMutationsReturnFreshTotals(t *testing.T) {
	svc, ctx, company := setup(t)

	quote, err := svc.Create(ctx, domain.CreateQuoteRequest{CompanyID: company.ID.String(), Title: "Website relaunch"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, quote.Status)
	assert.True(t, quote.TotalOneTime.IsZero())

	withSetup, err := svc.AddItem(ctx, domain.AddItemRequest{QuoteID: quote.ID.String(), Description: "Setup", Price: "100", Quantity: 2, Frequency: "one_time"})
	require.NoError(t, err)
	assert.True(t, withSetup.TotalOneTime.Equal(decimal.NewFromInt(200)))

	withHosting, err := svc.AddItem(ctx, domain.AddItemRequest{QuoteID: quote.ID.String(), Description: "Hosting", Price: "50", Quantity: 1, Frequency: "MONTHLY"})
	require.NoError(t, err)
	assert.True(t, withHosting.TotalOneTime.Equal(decimal.NewFromInt(200)))
	assert.True(t, withHosting.TotalMonthly.Equal(decimal.NewFromInt(50)))
	require.Len(t, withHosting.Items, 2)
	assert.Equal(t, "Setup", withHosting.Items[0].Description)

	hostingID := withHosting.Items[1].ID.String()
	updated, err := svc.UpdateItem(ctx, domain.UpdateItemRequest{QuoteID: quote.ID.String(), ItemID: hostingID, Quantity: lo.ToPtr(3)})
	require.NoError(t, err)
	assert.True(t, updated.TotalMonthly.Equal(decimal.NewFromInt(150)))
	assert.True(t, updated.Items[1].NetPrice.Equal(decimal.NewFromInt(150)))

	removed, err := svc.RemoveItem(ctx, domain.RemoveItemRequest{QuoteID: quote.ID.String(), ItemID: withHosting.Items[0].ID.String()})
	require.NoError(t, err)
	assert.True(t, removed.TotalOneTime.IsZero())
	assert.True(t, removed.TotalMonthly.Equal(decimal.NewFromInt(150)))

	got, err := svc.Get(ctx, quote.ID.String())
	require.NoError(t, err)
	assert.True(t, got.TotalMonthly.Equal(removed.TotalMonthly))
}

func TestQuoteValidation(t *testing.T) {
	svc, ctx, company := setup(t)

	_, err := svc.Create(ctx, domain.CreateQuoteRequest{CompanyID: company.ID.String(), Title: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)

	_, err = svc.Create(ctx, domain.CreateQuoteRequest{CompanyID: "42", Title: "Other"})
	assert.ErrorIs(t, err, companydomain.ErrNotFound)

	quote, err := svc.Create(ctx, domain.CreateQuoteRequest{CompanyID: company.ID.String(), Title: "Retainer"})
	require.NoError(t, err)
	quoteID := quote.ID.String()

	_, err = svc.AddItem(ctx, domain.AddItemRequest{QuoteID: quoteID, Price: "-1", Quantity: 1, Frequency: "MONTHLY"})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	_, err = svc.AddItem(ctx, domain.AddItemRequest{QuoteID: quoteID, Price: "1.999", Quantity: 1, Frequency: "MONTHLY"})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	_, err = svc.AddItem(ctx, domain.AddItemRequest{QuoteID: quoteID, Price: "1", Quantity: -1, Frequency: "MONTHLY"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = svc.AddItem(ctx, domain.AddItemRequest{QuoteID: quoteID, Price: "1e11", Quantity: 1, Frequency: "MONTHLY"})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	_, err = svc.AddItem(ctx, domain.AddItemRequest{QuoteID: quoteID, Price: "10000000000", Quantity: 1, Frequency: "MONTHLY"})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	_, err = svc.AddItem(ctx, domain.AddItemRequest{QuoteID: quoteID, Price: "1", Quantity: math.MaxInt32 + 1, Frequency: "MONTHLY"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = svc.AddItem(ctx, domain.AddItemRequest{QuoteID: quoteID, Price: "1", Quantity: 1, Frequency: "YEARLY"})
	assert.ErrorIs(t, err, domain.ErrInvalidFrequency)

	_, err = svc.UpdateItem(ctx, domain.UpdateItemRequest{QuoteID: quoteID, ItemID: "99", Quantity: lo.ToPtr(1)})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	_, err = svc.RemoveItem(ctx, domain.RemoveItemRequest{QuoteID: quoteID, ItemID: "99"})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	_, err = svc.Get(ctx, "99")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateItemRejectsValuesBeyondColumns(t *testing.T) {
	svc, ctx, company := setup(t)

	quote, err := svc.Create(ctx, domain.CreateQuoteRequest{CompanyID: company.ID.String(), Title: "Support"})
	require.NoError(t, err)
	detail, err := svc.AddItem(ctx, domain.AddItemRequest{QuoteID: quote.ID.String(), Description: "Hours", Price: "9999999999.99", Quantity: math.MaxInt32, Frequency: "MONTHLY"})
	require.NoError(t, err)
	itemID := detail.Items[0].ID.String()

	_, err = svc.UpdateItem(ctx, domain.UpdateItemRequest{QuoteID: quote.ID.String(), ItemID: itemID, Price: lo.ToPtr("10000000000.00")})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
	_, err = svc.UpdateItem(ctx, domain.UpdateItemRequest{QuoteID: quote.ID.String(), ItemID: itemID, Quantity: lo.ToPtr(math.MaxInt32 + 1)})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	got, err := svc.Get(ctx, quote.ID.String())
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, got.Items[0].Quantity)
}

func TestAddItemAppendsAfterHighestPosition(t *testing.T) {
	svc, ctx, company := setup(t)

	quote, err := svc.Create(ctx, domain.CreateQuoteRequest{CompanyID: company.ID.String(), Title: "Ordering"})
	require.NoError(t, err)
	quoteID := quote.ID.String()

	for _, description := range []string{"A", "B"} {
		_, err = svc.AddItem(ctx, domain.AddItemRequest{QuoteID: quoteID, Description: description, Price: "1", Quantity: 1, Frequency: "ONE_TIME"})
		require.NoError(t, err)
	}
	detail, err := svc.Get(ctx, quoteID)
	require.NoError(t, err)
	_, err = svc.RemoveItem(ctx, domain.RemoveItemRequest{QuoteID: quoteID, ItemID: detail.Items[0].ID.String()})
	require.NoError(t, err)

	detail, err = svc.AddItem(ctx, domain.AddItemRequest{QuoteID: quoteID, Description: "C", Price: "1", Quantity: 1, Frequency: "ONE_TIME"})
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "B", detail.Items[0].Description)
	assert.Equal(t, 1, detail.Items[0].Position)
	assert.Equal(t, "C", detail.Items[1].Description)
	assert.Equal(t, 2, detail.Items[1].Position)
}

func TestListByCompanyGroupsItemsPerQuote(t *testing.T) {
	svc, ctx, company := setup(t)

	first, err := svc.Create(ctx, domain.CreateQuoteRequest{CompanyID: company.ID.String(), Title: "First"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, domain.CreateQuoteRequest{CompanyID: company.ID.String(), Title: "Second"})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, domain.AddItemRequest{QuoteID: first.ID.String(), Price: "10", Quantity: 1, Frequency: "ONE_TIME"})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, domain.AddItemRequest{QuoteID: second.ID.String(), Price: "20", Quantity: 2, Frequency: "MONTHLY"})
	require.NoError(t, err)

	quotes, err := svc.ListByCompany(ctx, company.ID.String())
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	byTitle := lo.KeyBy(quotes, func(q domain.QuoteDetail) string { return q.Title })
	assert.True(t, byTitle["First"].TotalOneTime.Equal(decimal.NewFromInt(10)))
	assert.True(t, byTitle["Second"].TotalMonthly.Equal(decimal.NewFromInt(40)))
}
