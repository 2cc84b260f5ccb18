package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// FallbackToken is substituted when a caller presents no device token at
	// all. All anonymous traffic without a token shares one identity.
	FallbackToken = "anon"

	// tokenPrefix distinguishes guest identities from anything an operator
	// might create by hand in the identities table.
	tokenPrefix = "guest_"

	// maxTokenLen bounds the normalized token, matching the storage column.
	maxTokenLen = 64

	maxDisplayNameLen = 50
	maxLabelLen       = 200
)

type (
	// Identity is the stable partitioning key derived from an opaque
	// client-supplied token. It is created lazily on first contact and never
	// deleted by this layer.
	Identity struct {
		ID              int64
		Token           string
		DisplayName     string
		Authenticatable bool
		CreatedAt       time.Time
		UpdatedAt       time.Time
	}

	// Record is a user-submitted activity record. Immutable once created.
	Record struct {
		ID         int64     `json:"id"`
		IdentityID int64     `json:"-"`
		Amount     int64     `json:"amount"`
		Label      string    `json:"label"`
		OccurredAt time.Time `json:"occurred_at"`
		CreatedAt  time.Time `json:"created_at"`
	}

	// WindowTotal is the result of a windowed aggregation.
	WindowTotal struct {
		Total int64 `json:"total"`
		Count int64 `json:"count"`
	}
)

var (
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidYear     = errors.New("invalid year")
	ErrEmptyToken      = errors.New("empty token")
	ErrDisplayNameLong = errors.New("display name too long")
)

// NormalizeToken maps a raw client token to the storage key used for
// identity lookup and creation. The mapping is deterministic and affects
// identity uniqueness, so the exact rule matters:
//
//  1. surrounding whitespace is trimmed; an empty token becomes FallbackToken
//  2. every rune outside [A-Za-z0-9_.] is dropped (this removes the ':' and
//     '-' separators that device ids commonly carry)
//  3. the result is prefixed with "guest_" and truncated to 64 bytes
//
// Tokens that differ only in separators collapse to the same identity.
func NormalizeToken(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = FallbackToken
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	body := b.String()
	if body == "" {
		body = FallbackToken
	}

	token := tokenPrefix + body
	if len(token) > maxTokenLen {
		token = token[:maxTokenLen]
	}
	return token
}

// ValidateDisplayName bounds guest nicknames before they reach storage.
func ValidateDisplayName(name string) error {
	if len(name) > maxDisplayNameLen {
		return ErrDisplayNameLong
	}
	return nil
}

// TruncateLabel bounds record labels; oversized input is cut, not rejected,
// in keeping with the coercion policy for record fields.
func TruncateLabel(label string) string {
	label = strings.TrimSpace(label)
	if len(label) > maxLabelLen {
		label = label[:maxLabelLen]
	}
	return label
}
