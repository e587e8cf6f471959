package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j***@acme.io", MaskEmail("jane@acme.io"))
	assert.Equal(t, "***", MaskEmail("not-an-email"))
	assert.Equal(t, "", MaskEmail("  "))
}

func TestMaskJSONOnlyTouchesPersonalKeys(t *testing.T) {
	out := MaskJSON(map[string]any{
		"email":       "jane@acme.io",
		"phone":       "+4915112345678",
		"description": "Hosting",
		"nested":      map[string]any{"billing_email": "ops@acme.io"},
		" ":           "dropped",
	})

	assert.Equal(t, "j***@acme.io", out["email"])
	assert.Equal(t, "***78", out["phone"])
	assert.Equal(t, "Hosting", out["description"])
	assert.Equal(t, map[string]any{"billing_email": "o***@acme.io"}, out["nested"])
	assert.NotContains(t, out, " ")
}
