package orgcontext

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrgIDRoundTrip(t *testing.T) {
	ctx := WithOrgID(context.Background(), snowflake.ID(42))
	id, ok := OrgIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, snowflake.ID(42), id)
}

func TestOrgIDMissing(t *testing.T) {
	_, ok := OrgIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = OrgIDFromContext(WithOrgID(context.Background(), 0))
	assert.False(t, ok)
}

func TestParseOrgIDRejectsGarbage(t *testing.T) {
	_, err := ParseOrgID("not-a-number")
	assert.Error(t, err)

	_, err = ParseOrgID("-5")
	assert.Error(t, err)

	id, err := ParseOrgID(" 1234 ")
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(1234), id)
}
