package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/crm/internal/audit/domain"
	"github.com/smallbiznis/crm/internal/audit/repository"
	"github.com/smallbiznis/crm/internal/clock"
	obscontext "github.com/smallbiznis/crm/internal/observability/context"
	"github.com/smallbiznis/crm/internal/orgcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *clock.FakeClock, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clk,
		Repo:  repository.Provide(),
	}).(*Service)
	return svc, clk, node
}

func TestAuditLogMasksPersonalDataAndKeepsRequestID(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	ctx = obscontext.WithRequestID(ctx, "req-1")

	require.NoError(t, svc.Record(ctx, auditdomain.Entry{
		Action:     auditdomain.ActionBillingItemCreate,
		TargetType: auditdomain.TargetSubscriptionItem,
		TargetID:   snowflake.ID(42),
		Metadata: map[string]any{
			"email": "jane@acme.io",
			"price": "10.00",
		},
	}))

	resp, err := svc.List(ctx, auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)

	entry := resp.AuditLogs[0]
	assert.Equal(t, auditdomain.ActionBillingItemCreate, entry.Action)
	assert.Equal(t, auditdomain.TargetSubscriptionItem, entry.TargetType)
	require.NotNil(t, entry.TargetID)
	assert.Equal(t, "42", *entry.TargetID)
	require.NotNil(t, entry.RequestID)
	assert.Equal(t, "req-1", *entry.RequestID)
	assert.Equal(t, "j***@acme.io", entry.Metadata["email"])
	assert.Equal(t, "10.00", entry.Metadata["price"])
}

func TestAuditLogRequiresActionAndOrg(t *testing.T) {
	svc, _, node := newTestService(t)

	err := svc.Record(context.Background(), auditdomain.Entry{Action: auditdomain.ActionBillingItemCreate})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidOrganization)

	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())
	err = svc.Record(ctx, auditdomain.Entry{Action: "  ", TargetType: auditdomain.TargetSubscriptionItem})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	svc, clk, node := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())

	for _, action := range []auditdomain.Action{"a.first", "a.second", "a.third"} {
		require.NoError(t, svc.Record(ctx, auditdomain.Entry{Action: action, TargetType: auditdomain.TargetCompany}))
		clk.Advance(time.Minute)
	}

	page, err := svc.List(ctx, auditdomain.ListAuditLogRequest{})
	require.NoError(t, err)
	require.Len(t, page.AuditLogs, 3)
	assert.Equal(t, auditdomain.Action("a.third"), page.AuditLogs[0].Action)

	assert.False(t, page.HasMore)

	req := auditdomain.ListAuditLogRequest{}
	req.PageSize = 2
	firstPage, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, firstPage.AuditLogs, 2)
	require.True(t, firstPage.HasMore)

	req.PageToken = firstPage.NextPageToken
	secondPage, err := svc.List(ctx, req)
	require.NoError(t, err)
	require.Len(t, secondPage.AuditLogs, 1)
	assert.Equal(t, auditdomain.Action("a.first"), secondPage.AuditLogs[0].Action)
	assert.False(t, secondPage.HasMore)
}

func TestListRejectsInvertedRange(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())

	start := time.Now()
	end := start.Add(-time.Hour)
	_, err := svc.List(ctx, auditdomain.ListAuditLogRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)

	req := auditdomain.ListAuditLogRequest{}
	req.PageToken = "%%%"
	_, err = svc.List(ctx, req)
	assert.ErrorIs(t, err, auditdomain.ErrInvalidPageToken)
}

func TestListFiltersByTarget(t *testing.T) {
	svc, _, node := newTestService(t)
	ctx := orgcontext.WithOrgID(context.Background(), node.Generate())

	require.NoError(t, svc.Record(ctx, auditdomain.Entry{Action: auditdomain.ActionBillingItemDelete, TargetType: auditdomain.TargetSubscriptionItem, TargetID: 7}))
	require.NoError(t, svc.Record(ctx, auditdomain.Entry{Action: auditdomain.ActionContractAccept, TargetType: auditdomain.TargetCompany, TargetID: 8}))

	other := orgcontext.WithOrgID(context.Background(), node.Generate())
	require.NoError(t, svc.Record(other, auditdomain.Entry{Action: auditdomain.ActionContractAccept, TargetType: auditdomain.TargetCompany, TargetID: 8}))

	resp, err := svc.List(ctx, auditdomain.ListAuditLogRequest{TargetType: "company", TargetID: "8"})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	assert.Equal(t, auditdomain.ActionContractAccept, resp.AuditLogs[0].Action)
}
