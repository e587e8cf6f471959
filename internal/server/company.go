package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/pkg/db/pagination"
)

type createCompanyRequest struct {
	Name         string         `json:"name"`
	BillingEmail string         `json:"billing_email"`
	Metadata     map[string]any `json:"metadata"`
}

func (s *Server) CreateCompany(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.Create(c.Request.Context(), companydomain.CreateCompanyRequest{
		Name:         strings.TrimSpace(req.Name),
		BillingEmail: strings.TrimSpace(req.BillingEmail),
		Metadata:     req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListCompanies(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name string `form:"name"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.List(c.Request.Context(), companydomain.ListCompanyRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  int32(query.PageSize),
		Name:      strings.TrimSpace(query.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Companies, "page_info": resp.PageInfo})
}

func (s *Server) GetCompany(c *gin.Context) {
	resp, err := s.companySvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createProjectRequest struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

func (s *Server) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.CreateProject(c.Request.Context(), companydomain.CreateProjectRequest{
		CompanyID: strings.TrimSpace(c.Param("id")),
		Name:      strings.TrimSpace(req.Name),
		Status:    strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) SetProjectStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.SetProjectStatus(c.Request.Context(), companydomain.SetStatusRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type createClientUserRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func (s *Server) CreateClientUser(c *gin.Context) {
	var req createClientUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.CreateClientUser(c.Request.Context(), companydomain.CreateClientUserRequest{
		CompanyID: strings.TrimSpace(c.Param("id")),
		Email:     strings.TrimSpace(req.Email),
		Name:      strings.TrimSpace(req.Name),
		Status:    strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) SetClientUserStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.companySvc.SetClientUserStatus(c.Request.Context(), companydomain.SetStatusRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
