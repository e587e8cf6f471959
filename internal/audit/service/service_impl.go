package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	auditdomain "github.com/smallbiznis/crm/internal/audit/domain"
	"github.com/smallbiznis/crm/internal/audit/masking"
	"github.com/smallbiznis/crm/internal/clock"
	obscontext "github.com/smallbiznis/crm/internal/observability/context"
	"github.com/smallbiznis/crm/internal/orgcontext"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 250
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, entry auditdomain.Entry) error {
	action := auditdomain.Action(strings.TrimSpace(string(entry.Action)))
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return auditdomain.ErrInvalidOrganization
	}

	targetType := entry.TargetType
	if strings.TrimSpace(string(targetType)) == "" {
		targetType = "unknown"
	}

	row := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		Action:     action,
		TargetType: targetType,
		Metadata:   datatypes.JSONMap(masking.MaskJSON(entry.Metadata)),
		CreatedAt:  s.clock.Now(),
	}
	if entry.TargetID != 0 {
		targetID := entry.TargetID.String()
		row.TargetID = &targetID
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		row.RequestID = &requestID
	}

	if err := s.repo.Insert(ctx, s.db, &row); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", string(action)), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidOrganization
	}

	if req.StartAt != nil && req.EndAt != nil && req.StartAt.After(*req.EndAt) {
		return auditdomain.ListAuditLogResponse{}, auditdomain.ErrInvalidTimeRange
	}

	cursor, err := decodeCursor(req.PageToken)
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	pageSize := req.PageSize
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}

	rows, err := s.repo.List(ctx, s.db, auditdomain.ListFilter{
		OrgID:      orgID,
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		StartAt:    req.StartAt,
		EndAt:      req.EndAt,
		Cursor:     cursor,
		Limit:      pageSize,
	})
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	rows, pageInfo := pagination.Trim(rows, pageSize, func(row *auditdomain.AuditLog) pagination.Cursor {
		return pagination.Cursor{
			ID:        row.ID.String(),
			CreatedAt: row.CreatedAt.Format(time.RFC3339Nano),
		}
	})

	return auditdomain.ListAuditLogResponse{PageInfo: pageInfo, AuditLogs: lo.FromSlicePtr(rows)}, nil
}

func decodeCursor(token string) (*auditdomain.AuditCursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	decoded, err := pagination.DecodeCursor(token)
	if err != nil {
		return nil, auditdomain.ErrInvalidPageToken
	}
	createdAt, ok := decoded.Time()
	if !ok {
		return nil, auditdomain.ErrInvalidPageToken
	}
	id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
	if err != nil || id == 0 {
		return nil, auditdomain.ErrInvalidPageToken
	}
	return &auditdomain.AuditCursor{ID: id, CreatedAt: createdAt}, nil
}
