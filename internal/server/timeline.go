package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invitationdomain "github.com/smallbiznis/crm/internal/invitation/domain"
	timelinedomain "github.com/smallbiznis/crm/internal/timeline/domain"
)

func (s *Server) GetTimeline(c *gin.Context) {
	resp, err := s.timelineSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createActivityRequest struct {
	Type       string         `json:"type"`
	Subject    string         `json:"subject"`
	Body       string         `json:"body"`
	OccurredAt string         `json:"occurred_at"`
	Metadata   map[string]any `json:"metadata"`
}

func (s *Server) CreateActivity(c *gin.Context) {
	var req createActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	occurredAt, err := parseOptionalTime(req.OccurredAt, false)
	if err != nil {
		AbortWithError(c, newValidationError("occurred_at", "invalid_occurred_at", "invalid occurred_at"))
		return
	}

	resp, err := s.timelineSvc.CreateActivity(c.Request.Context(), timelinedomain.CreateActivityRequest{
		CompanyID:  strings.TrimSpace(c.Param("id")),
		Type:       strings.TrimSpace(req.Type),
		Subject:    strings.TrimSpace(req.Subject),
		Body:       req.Body,
		OccurredAt: occurredAt,
		Metadata:   req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

type createInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Server) CreateInvitation(c *gin.Context) {
	var req createInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.invitationSvc.Invite(c.Request.Context(), invitationdomain.InviteRequest{
		CompanyID: strings.TrimSpace(c.Param("id")),
		Email:     strings.TrimSpace(req.Email),
		Role:      strings.TrimSpace(req.Role),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) AcceptContract(c *gin.Context) {
	resp, err := s.timelineSvc.AcceptContract(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
