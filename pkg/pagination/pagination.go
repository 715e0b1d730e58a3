// Package pagination implements the cursor scheme shared by the browse feeds
// (business search, review lists, saved listings). Feeds are ordered
// newest-first by (created_at, id); a cursor marks the last row a client has
// seen so the next page resumes strictly after it.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the page size when the client does not ask for one.
	DefaultLimit = 25
	// MaxLimit caps a single page regardless of the requested limit.
	MaxLimit = 100

	cursorSeparator = ":"
)

// Params carries the pagination inputs of one feed request.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor is the (created_at, id) position of the last row on a page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit clamps a requested limit to [1, MaxLimit], substituting
// DefaultLimit for absent or non-positive values.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// FetchLimit is the row count a feed query should request: one past the page
// size, so the presence of the extra row signals another page exists.
func FetchLimit(limit int) int {
	return NormalizeLimit(limit) + 1
}

// Encode renders the cursor as an opaque URL-safe token.
func (c Cursor) Encode() string {
	payload := strconv.FormatInt(c.CreatedAt.UTC().UnixNano(), 10) + cursorSeparator + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes a client-supplied cursor token. An empty token means
// "from the top" and yields a nil cursor.
func ParseCursor(token string) (*Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	nanos, idPart, ok := strings.Cut(string(decoded), cursorSeparator)
	if !ok {
		return nil, fmt.Errorf("invalid cursor format")
	}

	unixNano, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{
		CreatedAt: time.Unix(0, unixNano).UTC(),
		ID:        id,
	}, nil
}
