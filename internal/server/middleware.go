package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/crm/internal/observability/context"
	"github.com/smallbiznis/crm/internal/orgcontext"
)

const HeaderOrg = "X-Org-Id"

// OrgContext resolves the tenant from the X-Org-Id header. The header is trusted as-is.
func OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderOrg))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		orgID, err := orgcontext.ParseOrgID(raw)
		if err != nil {
			AbortWithError(c, newValidationError("org_id", "invalid_org_id", "invalid X-Org-Id header"))
			return
		}

		ctx := orgcontext.WithOrgID(c.Request.Context(), orgID)
		ctx = obscontext.WithOrgID(ctx, orgID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
