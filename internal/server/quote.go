package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	quotedomain "github.com/smallbiznis/crm/internal/quote/domain"
)

type createQuoteRequest struct {
	Title string `json:"title"`
}

func (s *Server) CreateQuote(c *gin.Context) {
	var req createQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.Create(c.Request.Context(), quotedomain.CreateQuoteRequest{
		CompanyID: strings.TrimSpace(c.Param("id")),
		Title:     strings.TrimSpace(req.Title),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListQuotes(c *gin.Context) {
	resp, err := s.quoteSvc.ListByCompany(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetQuote(c *gin.Context) {
	resp, err := s.quoteSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type addQuoteItemRequest struct {
	Description string `json:"description"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	Frequency   string `json:"frequency"`
}

func (s *Server) AddQuoteItem(c *gin.Context) {
	var req addQuoteItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.AddItem(c.Request.Context(), quotedomain.AddItemRequest{
		QuoteID:     strings.TrimSpace(c.Param("id")),
		Description: strings.TrimSpace(req.Description),
		Price:       strings.TrimSpace(req.Price),
		Quantity:    req.Quantity,
		Frequency:   strings.TrimSpace(req.Frequency),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateQuoteItemRequest struct {
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Quantity    *int    `json:"quantity"`
	Frequency   *string `json:"frequency"`
}

func (s *Server) UpdateQuoteItem(c *gin.Context) {
	var req updateQuoteItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.UpdateItem(c.Request.Context(), quotedomain.UpdateItemRequest{
		QuoteID:     strings.TrimSpace(c.Param("id")),
		ItemID:      strings.TrimSpace(c.Param("itemId")),
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Frequency:   req.Frequency,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveQuoteItem(c *gin.Context) {
	resp, err := s.quoteSvc.RemoveItem(c.Request.Context(), quotedomain.RemoveItemRequest{
		QuoteID: strings.TrimSpace(c.Param("id")),
		ItemID:  strings.TrimSpace(c.Param("itemId")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
