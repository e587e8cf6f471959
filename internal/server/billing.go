package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/smallbiznis/crm/internal/billing/domain"
)

type upsertBillingSettingsRequest struct {
	BillingType string `json:"billing_type"`
	BillingDay  int    `json:"billing_day"`
}

func (s *Server) GetBillingSettings(c *gin.Context) {
	resp, err := s.billingSvc.GetSettings(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpsertBillingSettings(c *gin.Context) {
	var req upsertBillingSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.UpsertSettings(c.Request.Context(), billingdomain.UpsertSettingsRequest{
		CompanyID:   strings.TrimSpace(c.Param("id")),
		BillingType: strings.TrimSpace(req.BillingType),
		BillingDay:  req.BillingDay,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSubscriptionItems(c *gin.Context) {
	resp, err := s.billingSvc.ListItems(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Prices travel as decimal strings so no precision is lost in JSON.
type createSubscriptionItemRequest struct {
	ExternalItemID string `json:"external_item_id"`
	Code           string `json:"code"`
	Description    string `json:"description"`
	Price          string `json:"price"`
	CountType      string `json:"count_type"`
	ManualQuantity *int   `json:"manual_quantity"`
	Position       *int   `json:"position"`
}

func (s *Server) CreateSubscriptionItem(c *gin.Context) {
	var req createSubscriptionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.CreateItem(c.Request.Context(), billingdomain.CreateItemRequest{
		CompanyID:      strings.TrimSpace(c.Param("id")),
		ExternalItemID: strings.TrimSpace(req.ExternalItemID),
		Code:           strings.TrimSpace(req.Code),
		Description:    strings.TrimSpace(req.Description),
		Price:          strings.TrimSpace(req.Price),
		CountType:      strings.TrimSpace(req.CountType),
		ManualQuantity: req.ManualQuantity,
		Position:       req.Position,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

type updateSubscriptionItemRequest struct {
	ExternalItemID *string `json:"external_item_id"`
	Code           *string `json:"code"`
	Description    *string `json:"description"`
	Price          *string `json:"price"`
	CountType      *string `json:"count_type"`
	ManualQuantity *int    `json:"manual_quantity"`
	Position       *int    `json:"position"`
}

func (s *Server) UpdateSubscriptionItem(c *gin.Context) {
	var req updateSubscriptionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.UpdateItem(c.Request.Context(), billingdomain.UpdateItemRequest{
		ID:             strings.TrimSpace(c.Param("id")),
		ExternalItemID: req.ExternalItemID,
		Code:           req.Code,
		Description:    req.Description,
		Price:          req.Price,
		CountType:      req.CountType,
		ManualQuantity: req.ManualQuantity,
		Position:       req.Position,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteSubscriptionItem(c *gin.Context) {
	if err := s.billingSvc.DeleteItem(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetBillingSummary(c *gin.Context) {
	resp, err := s.billingSvc.GetSummary(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
