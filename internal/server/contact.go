package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	contactdomain "github.com/smallbiznis/crm/internal/contact/domain"
)

type createContactRequest struct {
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	JobTitle  string         `json:"job_title"`
	Metadata  map[string]any `json:"metadata"`
}

func (s *Server) CreateContact(c *gin.Context) {
	var req createContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contactSvc.Create(c.Request.Context(), contactdomain.CreateContactRequest{
		CompanyID: strings.TrimSpace(c.Param("id")),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		JobTitle:  strings.TrimSpace(req.JobTitle),
		Metadata:  req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListContacts(c *gin.Context) {
	resp, err := s.contactSvc.ListByCompany(c.Request.Context(), contactdomain.ListContactRequest{
		CompanyID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetContact(c *gin.Context) {
	resp, err := s.contactSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
