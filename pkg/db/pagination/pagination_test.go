package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID        string
	CreatedAt time.Time
}

func TestCursorRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	token, err := EncodeCursor(Cursor{ID: "42", CreatedAt: now.Format(time.RFC3339Nano)})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "42", cursor.ID)

	parsed, ok := cursor.Time()
	require.True(t, ok)
	assert.True(t, parsed.Equal(now))
}

func TestTrim(t *testing.T) {
	rows := []*row{{ID: "3"}, {ID: "2"}, {ID: "1"}}
	extract := func(r *row) Cursor { return Cursor{ID: r.ID, CreatedAt: r.CreatedAt.Format(time.RFC3339Nano)} }

	page, info := Trim(rows, 2, extract)
	assert.Len(t, page, 2)
	assert.True(t, info.HasMore)
	assert.NotEmpty(t, info.NextPageToken)

	page, info = Trim(rows, 5, extract)
	assert.Len(t, page, 3)
	assert.False(t, info.HasMore)
}
