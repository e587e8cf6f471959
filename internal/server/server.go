package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/smallbiznis/crm/internal/audit/domain"
	billingdomain "github.com/smallbiznis/crm/internal/billing/domain"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/config"
	contactdomain "github.com/smallbiznis/crm/internal/contact/domain"
	invitationdomain "github.com/smallbiznis/crm/internal/invitation/domain"
	"github.com/smallbiznis/crm/internal/observability"
	obsmiddleware "github.com/smallbiznis/crm/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/crm/internal/observability/metrics"
	obstracing "github.com/smallbiznis/crm/internal/observability/tracing"
	quotedomain "github.com/smallbiznis/crm/internal/quote/domain"
	timelinedomain "github.com/smallbiznis/crm/internal/timeline/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, s *Server) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	auditSvc      auditdomain.Service
	billingSvc    billingdomain.Service
	companySvc    companydomain.Service
	contactSvc    contactdomain.Service
	invitationSvc invitationdomain.Service
	quoteSvc      quotedomain.Service
	timelineSvc   timelinedomain.Service
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	AuditSvc      auditdomain.Service
	BillingSvc    billingdomain.Service
	CompanySvc    companydomain.Service
	ContactSvc    contactdomain.Service
	InvitationSvc invitationdomain.Service
	QuoteSvc      quotedomain.Service
	TimelineSvc   timelinedomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		auditSvc:      p.AuditSvc,
		billingSvc:    p.BillingSvc,
		companySvc:    p.CompanySvc,
		contactSvc:    p.ContactSvc,
		invitationSvc: p.InvitationSvc,
		quoteSvc:      p.QuoteSvc,
		timelineSvc:   p.TimelineSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(OrgContext())

	api.POST("/companies", s.CreateCompany)
	api.GET("/companies", s.ListCompanies)
	api.GET("/companies/:id", s.GetCompany)
	api.POST("/companies/:id/projects", s.CreateProject)
	api.PATCH("/projects/:id/status", s.SetProjectStatus)
	api.POST("/companies/:id/users", s.CreateClientUser)
	api.PATCH("/users/:id/status", s.SetClientUserStatus)

	api.POST("/companies/:id/contacts", s.CreateContact)
	api.GET("/companies/:id/contacts", s.ListContacts)
	api.GET("/contacts/:id", s.GetContact)

	api.GET("/companies/:id/billing/settings", s.GetBillingSettings)
	api.PUT("/companies/:id/billing/settings", s.UpsertBillingSettings)
	api.GET("/companies/:id/billing/items", s.ListSubscriptionItems)
	api.POST("/companies/:id/billing/items", s.CreateSubscriptionItem)
	api.PATCH("/billing/items/:id", s.UpdateSubscriptionItem)
	api.DELETE("/billing/items/:id", s.DeleteSubscriptionItem)
	api.GET("/companies/:id/billing/summary", s.GetBillingSummary)

	api.POST("/companies/:id/quotes", s.CreateQuote)
	api.GET("/companies/:id/quotes", s.ListQuotes)
	api.GET("/quotes/:id", s.GetQuote)
	api.POST("/quotes/:id/items", s.AddQuoteItem)
	api.PATCH("/quotes/:id/items/:itemId", s.UpdateQuoteItem)
	api.DELETE("/quotes/:id/items/:itemId", s.RemoveQuoteItem)

	api.GET("/companies/:id/timeline", s.GetTimeline)
	api.POST("/companies/:id/activities", s.CreateActivity)
	api.POST("/companies/:id/invitations", s.CreateInvitation)
	api.POST("/companies/:id/contract/accept", s.AcceptContract)

	api.GET("/audit-logs", s.ListAuditLogs)
}
