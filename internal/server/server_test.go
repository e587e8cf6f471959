package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	billingdomain "github.com/smallbiznis/crm/internal/billing/domain"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	invitationdomain "github.com/smallbiznis/crm/internal/invitation/domain"
	"github.com/smallbiznis/crm/internal/observability"
	"github.com/smallbiznis/crm/internal/orgcontext"
	quotedomain "github.com/smallbiznis/crm/internal/quote/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testOrgID = "1001"

type mockBillingSvc struct {
	billingdomain.Service
	mock.Mock
}

func (m *mockBillingSvc) GetSummary(ctx context.Context, companyID string) (billingdomain.BillingSummary, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(billingdomain.BillingSummary), args.Error(1)
}

func (m *mockBillingSvc) CreateItem(ctx context.Context, req billingdomain.CreateItemRequest) (billingdomain.SubscriptionItem, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(billingdomain.SubscriptionItem), args.Error(1)
}

func (m *mockBillingSvc) DeleteItem(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockQuoteSvc struct {
	quotedomain.Service
	mock.Mock
}

func (m *mockQuoteSvc) Get(ctx context.Context, id string) (quotedomain.QuoteDetail, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(quotedomain.QuoteDetail), args.Error(1)
}

type mockCompanySvc struct {
	companydomain.Service
	mock.Mock
}

func (m *mockCompanySvc) GetByID(ctx context.Context, id string) (companydomain.Company, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(companydomain.Company), args.Error(1)
}

func newTestServer(t *testing.T, p ServerParams) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	p.Gin = NewEngine(observability.Config{LogLevel: "info"}, nil)
	return NewServer(p)
}

func doRequest(s *Server, method, path, orgID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if orgID != "" {
		req.Header.Set(HeaderOrg, orgID)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, ServerParams{})

	w := doRequest(s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestOrgContextRequiresHeader(t *testing.T) {
	s := newTestServer(t, ServerParams{})

	w := doRequest(s, http.MethodGet, "/api/companies/1/billing/summary", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decodeError(t, w).Type)

	w = doRequest(s, http.MethodGet, "/api/companies/1/billing/summary", "acme", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeError(t, w)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_org_id", payload.Errors[0].Code)
}

func TestGetBillingSummary(t *testing.T) {
	billing := &mockBillingSvc{}
	s := newTestServer(t, ServerParams{BillingSvc: billing})

	summary := billingdomain.BillingSummary{
		CompanyID:   snowflake.ID(7),
		BillingType: billingdomain.BillingTypeStandard,
		Items:       []billingdomain.ComputedLineItem{},
		Total:       decimal.RequireFromString("130"),
	}
	billing.On("GetSummary", mock.MatchedBy(func(ctx context.Context) bool {
		orgID, ok := orgcontext.OrgIDFromContext(ctx)
		return ok && orgID.String() == testOrgID
	}), "7").Return(summary, nil)

	w := doRequest(s, http.MethodGet, "/api/companies/7/billing/summary", testOrgID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Total       string `json:"total"`
			BillingType string `json:"billing_type"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "130", resp.Data.Total)
	assert.Equal(t, "STANDARD", resp.Data.BillingType)
	billing.AssertExpectations(t)
}

func TestCreateSubscriptionItemValidation(t *testing.T) {
	billing := &mockBillingSvc{}
	s := newTestServer(t, ServerParams{BillingSvc: billing})

	billing.On("CreateItem", mock.Anything, mock.MatchedBy(func(req billingdomain.CreateItemRequest) bool {
		return req.CompanyID == "7" && req.Price == "-1"
	})).Return(billingdomain.SubscriptionItem{}, billingdomain.ErrInvalidPrice)

	w := doRequest(s, http.MethodPost, "/api/companies/7/billing/items", testOrgID, map[string]any{
		"price":      " -1 ",
		"count_type": "MANUAL",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload := decodeError(t, w)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "price", payload.Errors[0].Field)
	assert.Equal(t, "invalid_price", payload.Errors[0].Code)
}

func TestCreateSubscriptionItemRejectsMalformedJSON(t *testing.T) {
	s := newTestServer(t, ServerParams{BillingSvc: &mockBillingSvc{}})

	req := httptest.NewRequest(http.MethodPost, "/api/companies/7/billing/items", bytes.NewBufferString("{"))
	req.Header.Set(HeaderOrg, testOrgID)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decodeError(t, w).Errors[0].Code)
}

func TestDeleteSubscriptionItemNotFound(t *testing.T) {
	billing := &mockBillingSvc{}
	s := newTestServer(t, ServerParams{BillingSvc: billing})
	billing.On("DeleteItem", mock.Anything, "55").Return(billingdomain.ErrItemNotFound)

	w := doRequest(s, http.MethodDelete, "/api/billing/items/55", testOrgID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Type)
}

func TestGetQuote(t *testing.T) {
	quotes := &mockQuoteSvc{}
	s := newTestServer(t, ServerParams{QuoteSvc: quotes})

	detail := quotedomain.QuoteDetail{
		Quote: quotedomain.Quote{ID: snowflake.ID(9), Title: "Website"},
		QuoteTotals: quotedomain.QuoteTotals{
			Items:        []quotedomain.PricedItem{},
			TotalOneTime: decimal.RequireFromString("200"),
			TotalMonthly: decimal.RequireFromString("50"),
		},
	}
	quotes.On("Get", mock.Anything, "9").Return(detail, nil)

	w := doRequest(s, http.MethodGet, "/api/quotes/9", testOrgID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			TotalOneTime string `json:"total_one_time"`
			TotalMonthly string `json:"total_monthly"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "200", resp.Data.TotalOneTime)
	assert.Equal(t, "50", resp.Data.TotalMonthly)
}

func TestGetCompanyErrors(t *testing.T) {
	companies := &mockCompanySvc{}
	s := newTestServer(t, ServerParams{CompanySvc: companies})
	companies.On("GetByID", mock.Anything, "abc").Return(companydomain.Company{}, companydomain.ErrInvalidID)
	companies.On("GetByID", mock.Anything, "404").Return(companydomain.Company{}, companydomain.ErrNotFound)
	companies.On("GetByID", mock.Anything, "500").Return(companydomain.Company{}, assert.AnError)

	assert.Equal(t, http.StatusBadRequest, doRequest(s, http.MethodGet, "/api/companies/abc", testOrgID, nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(s, http.MethodGet, "/api/companies/404", testOrgID, nil).Code)

	w := doRequest(s, http.MethodGet, "/api/companies/500", testOrgID, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", decodeError(t, w).Type)
}

func TestMapError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{billingdomain.ErrInvalidBillingDay, http.StatusBadRequest},
		{quotedomain.ErrInvalidFrequency, http.StatusBadRequest},
		{quotedomain.ErrItemNotFound, http.StatusNotFound},
		{companydomain.ErrProjectNotFound, http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{invitationdomain.ErrAlreadyInvited, http.StatusConflict},
		{ErrUnauthorized, http.StatusUnauthorized},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		status, _ := mapError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
	}

	_, payload := mapError(billingdomain.ErrInvalidBillingDay)
	assert.Equal(t, "billing_day", payload.Errors[0].Field)
}

func TestClassifyErrorForLog(t *testing.T) {
	kind, code := classifyErrorForLog(billingdomain.ErrInvalidCountType)
	assert.Equal(t, "client", kind)
	assert.Equal(t, "invalid_count_type", code)

	kind, code = classifyErrorForLog(assert.AnError)
	assert.Equal(t, "internal", kind)
	assert.Equal(t, "internal_error", code)
}
