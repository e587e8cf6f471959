package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/crm/internal/audit/domain"
	billingdomain "github.com/smallbiznis/crm/internal/billing/domain"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	contactdomain "github.com/smallbiznis/crm/internal/contact/domain"
	invitationdomain "github.com/smallbiznis/crm/internal/invitation/domain"
	"github.com/smallbiznis/crm/internal/orgcontext"
	quotedomain "github.com/smallbiznis/crm/internal/quote/domain"
	timelinedomain "github.com/smallbiznis/crm/internal/timeline/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, invitationdomain.ErrAlreadyInvited):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog reports the error type and code attached to request logs.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if status >= http.StatusInternalServerError {
		return "internal", code
	}
	return "client", code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, orgcontext.ErrInvalidOrgID):
		return true
	case isCompanyValidationError(err),
		isContactValidationError(err),
		isBillingValidationError(err),
		isQuoteValidationError(err),
		isTimelineValidationError(err),
		isAuditValidationError(err):
		return true
	default:
		return false
	}
}

func isCompanyValidationError(err error) bool {
	switch err {
	case companydomain.ErrInvalidOrganization,
		companydomain.ErrInvalidID,
		companydomain.ErrInvalidName,
		companydomain.ErrInvalidEmail,
		companydomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}

func isContactValidationError(err error) bool {
	switch err {
	case contactdomain.ErrInvalidOrganization,
		contactdomain.ErrInvalidID,
		contactdomain.ErrInvalidName,
		contactdomain.ErrInvalidEmail:
		return true
	default:
		return false
	}
}

func isBillingValidationError(err error) bool {
	switch err {
	case billingdomain.ErrInvalidOrganization,
		billingdomain.ErrInvalidID,
		billingdomain.ErrInvalidBillingType,
		billingdomain.ErrInvalidBillingDay,
		billingdomain.ErrInvalidPrice,
		billingdomain.ErrInvalidCountType,
		billingdomain.ErrInvalidManualQuantity,
		billingdomain.ErrInvalidPosition:
		return true
	default:
		return false
	}
}

func isQuoteValidationError(err error) bool {
	switch err {
	case quotedomain.ErrInvalidOrganization,
		quotedomain.ErrInvalidID,
		quotedomain.ErrInvalidTitle,
		quotedomain.ErrInvalidPrice,
		quotedomain.ErrInvalidQuantity,
		quotedomain.ErrInvalidFrequency:
		return true
	default:
		return false
	}
}

func isTimelineValidationError(err error) bool {
	switch err {
	case timelinedomain.ErrInvalidActivityType,
		timelinedomain.ErrInvalidSubject,
		invitationdomain.ErrInvalidOrganization,
		invitationdomain.ErrInvalidEmail,
		invitationdomain.ErrInvalidRole:
		return true
	default:
		return false
	}
}

func isAuditValidationError(err error) bool {
	switch err {
	case auditdomain.ErrInvalidOrganization,
		auditdomain.ErrInvalidPageToken,
		auditdomain.ErrInvalidTimeRange,
		auditdomain.ErrInvalidAction:
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, companydomain.ErrNotFound),
		errors.Is(err, companydomain.ErrProjectNotFound),
		errors.Is(err, companydomain.ErrClientUserNotFound),
		errors.Is(err, contactdomain.ErrNotFound),
		errors.Is(err, billingdomain.ErrItemNotFound),
		errors.Is(err, quotedomain.ErrNotFound),
		errors.Is(err, quotedomain.ErrItemNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
