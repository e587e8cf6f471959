package pagination

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=50" validate:"gte=1,lte=250"`
}

type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Time parses the cursor timestamp.
func (c Cursor) Time() (time.Time, bool) {
	if c.CreatedAt == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(time.RFC3339Nano, c.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// Trim cuts the overfetched row and builds the page info.
func Trim[T any](data []*T, limit int, extractCursor func(*T) Cursor) ([]*T, PageInfo) {
	if limit <= 0 || len(data) <= limit {
		return data, PageInfo{}
	}

	data = data[:limit]
	token, err := EncodeCursor(extractCursor(data[len(data)-1]))
	if err != nil {
		return data, PageInfo{}
	}
	return data, PageInfo{HasMore: true, NextPageToken: token}
}
