package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/crm/internal/clock"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/contact/domain"
	"github.com/smallbiznis/crm/internal/orgcontext"
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

func setup(t *testing.T) (domain.Service, *mockCompanySvc, context.Context, companydomain.Company) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Contact{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	orgID := node.Generate()
	company := companydomain.Company{ID: node.Generate(), OrgID: orgID, Name: "Acme"}

	companies := &mockCompanySvc{}
	svc := New(Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clock.NewFakeClock(time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)),
		CompanySvc: companies,
	})
	return svc, companies, orgcontext.WithOrgID(context.Background(), orgID), company
}

func TestCreateAndListContacts(t *testing.T) {
	svc, companies, ctx, company := setup(t)
	companies.On("GetByID", mock.Anything, company.ID.String()).Return(company, nil)

	_, err := svc.Create(ctx, domain.CreateContactRequest{CompanyID: company.ID.String(), FirstName: "Zoe", LastName: "Weber", Email: "zoe@acme.io"})
	require.NoError(t, err)
	created, err := svc.Create(ctx, domain.CreateContactRequest{CompanyID: company.ID.String(), FirstName: "Anna", LastName: "Becker", JobTitle: " CFO "})
	require.NoError(t, err)
	assert.Equal(t, "CFO", created.JobTitle)

	contacts, err := svc.ListByCompany(ctx, domain.ListContactRequest{CompanyID: company.ID.String()})
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Becker", contacts[0].LastName)
	assert.Equal(t, "Weber", contacts[1].LastName)

	got, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, company.ID, got.CompanyID)
	companies.AssertExpectations(t)
}

func TestCreateContactValidation(t *testing.T) {
	svc, companies, ctx, company := setup(t)
	companies.On("GetByID", mock.Anything, company.ID.String()).Return(company, nil)
	companies.On("GetByID", mock.Anything, "404").Return(companydomain.Company{}, companydomain.ErrNotFound)

	_, err := svc.Create(ctx, domain.CreateContactRequest{CompanyID: company.ID.String(), FirstName: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateContactRequest{CompanyID: company.ID.String(), FirstName: "Anna", Email: "anna"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(ctx, domain.CreateContactRequest{CompanyID: "404", FirstName: "Anna"})
	assert.ErrorIs(t, err, companydomain.ErrNotFound)

	_, err = svc.GetByID(ctx, "777")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
