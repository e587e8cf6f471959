package orgcontext

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// ErrInvalidOrgID is returned when an organization identifier cannot be parsed.
var ErrInvalidOrgID = errors.New("invalid_org_id")

// OrgContextKey is the request context key for the active organization ID.
type OrgContextKey struct{}

// WithOrgID stores the org ID in the context.
func WithOrgID(ctx context.Context, orgID snowflake.ID) context.Context {
	return context.WithValue(ctx, OrgContextKey{}, orgID)
}

// OrgIDFromContext returns the org ID from context, if set.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(OrgContextKey{}).(type) {
	case snowflake.ID:
		return typed, typed != 0
	case int64:
		return snowflake.ID(typed), typed != 0
	case string:
		parsed, err := ParseOrgID(typed)
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}

// ParseOrgID parses a textual organization identifier.
func ParseOrgID(raw string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || parsed <= 0 {
		return 0, ErrInvalidOrgID
	}
	return parsed, nil
}
