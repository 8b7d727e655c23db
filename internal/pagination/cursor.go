// Package pagination implements keyset pagination over rows ordered by
// creation time, newest first.
package pagination

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"socialhub/internal/models"

	"gorm.io/gorm"
)

// Page size bounds shared by every list endpoint.
const (
	DefaultLimit = 20
	MinLimit     = 1
	MaxLimit     = 50
)

// idSeparator joins the timestamp and id of a composite cursor.
const idSeparator = "~"

var cursorLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ClampLimit parses a limit query value. Only the leading integer counts, so
// "10abc" and "10.5" both mean 10. Empty, non-numeric and zero values fall
// back to DefaultLimit; everything else is clamped to [MinLimit, MaxLimit].
func ClampLimit(raw string) int {
	n, ok := leadingInt(strings.TrimSpace(raw))
	if !ok || n == 0 {
		return DefaultLimit
	}
	if n < MinLimit {
		return MinLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

func leadingInt(s string) (int, bool) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// Out of range for int: saturate toward the sign.
		if s[0] == '-' {
			return -1, true
		}
		return MaxLimit + 1, true
	}
	return n, true
}

// Cursor is a position in a (created_at DESC, id DESC) ordering. The row at
// the cursor position is the first row of the page it addresses.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// ParseCursor decodes an ISO-8601 timestamp, optionally followed by "~<id>".
// An empty string yields a nil cursor.
func ParseCursor(raw string) (*Cursor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	ts, id, _ := strings.Cut(raw, idSeparator)
	// A "+" offset arrives as a space when the client did not escape it.
	ts = strings.Replace(ts, " ", "+", 1)
	if strings.Contains(raw, idSeparator) && strings.TrimSpace(id) == "" {
		return nil, invalidCursor(raw)
	}

	for _, layout := range cursorLayouts {
		t, err := time.Parse(layout, ts)
		if err == nil {
			return &Cursor{CreatedAt: t.UTC(), ID: strings.TrimSpace(id)}, nil
		}
	}
	return nil, invalidCursor(raw)
}

func invalidCursor(raw string) error {
	return models.NewValidationError("Invalid cursor").
		WithExtra("cursor", raw)
}

// String encodes the cursor. A cursor without an id is a bare timestamp.
func (c Cursor) String() string {
	ts := c.CreatedAt.UTC().Format(time.RFC3339Nano)
	if c.ID == "" {
		return ts
	}
	return ts + idSeparator + c.ID
}

// Keyed is implemented by rows that can be paginated.
type Keyed interface {
	CursorKey() (time.Time, string)
}

// Page is one slice of a paginated collection.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

// Scope restricts a query to rows at or after the cursor position, orders
// them newest first and fetches one row beyond limit so Trim can tell
// whether another page exists.
func Scope(table string, cur *Cursor, limit int) func(*gorm.DB) *gorm.DB {
	createdAt := table + ".created_at"
	id := table + ".id"

	return func(db *gorm.DB) *gorm.DB {
		if cur != nil {
			if cur.ID == "" {
				db = db.Where(createdAt+" <= ?", cur.CreatedAt)
			} else {
				db = db.Where(
					fmt.Sprintf("(%s < ? OR (%s = ? AND %s <= ?))", createdAt, createdAt, id),
					cur.CreatedAt, cur.CreatedAt, cur.ID,
				)
			}
		}
		return db.Order(createdAt + " DESC").Order(id + " DESC").Limit(limit + 1)
	}
}

// Trim cuts rows fetched through Scope down to limit and computes the cursor
// of the first row left out. The id is only encoded when that row shares its
// timestamp with the last row returned.
func Trim[T Keyed](rows []T, limit int) Page[T] {
	if len(rows) <= limit {
		if rows == nil {
			rows = []T{}
		}
		return Page[T]{Items: rows}
	}

	nextAt, nextID := rows[limit].CursorKey()
	lastAt, _ := rows[limit-1].CursorKey()

	next := Cursor{CreatedAt: nextAt}
	if lastAt.Equal(nextAt) {
		next.ID = nextID
	}
	return Page[T]{Items: rows[:limit], NextCursor: next.String()}
}
