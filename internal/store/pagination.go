package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type CursorPage struct {
	Items      interface{} `json:"items"`
	NextCursor string      `json:"nextCursor,omitempty"`
	HasMore    bool        `json:"hasMore"`
}

// SaleCursor points just past the last sale of a page. Sales are listed
// newest first by (date, id).
type SaleCursor struct {
	Date time.Time `json:"date"`
	ID   int64     `json:"id"`
}

func EncodeCursor(cursor SaleCursor) string {
	data, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor parses an encoded cursor. The empty string yields a cursor
// positioned before every stored sale.
func DecodeCursor(encoded string) (SaleCursor, error) {
	var cursor SaleCursor
	if encoded == "" {
		return SaleCursor{
			Date: time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC),
			ID:   math.MaxInt64,
		}, nil
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return cursor, invalidArgument("malformed cursor")
	}

	if err := json.Unmarshal(data, &cursor); err != nil {
		return cursor, fmt.Errorf("%w: malformed cursor: %v", ErrInvalidArgument, err)
	}
	return cursor, nil
}

// ClampPageSize maps out-of-range limits onto DefaultPageSize.
func ClampPageSize(limit int) int {
	if limit < 1 || limit > MaxPageSize {
		return DefaultPageSize
	}
	return limit
}

// After reports whether a sale at (date, id) sorts after the cursor in
// newest-first order, i.e. belongs to the next page.
func (c SaleCursor) After(date time.Time, id int64) bool {
	if date.Equal(c.Date) {
		return id < c.ID
	}
	return date.Before(c.Date)
}
