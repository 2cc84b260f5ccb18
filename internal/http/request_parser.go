// Package http provides the HTTP API surface.
//
// This file implements utilities for parsing and validating HTTP request
// data: device token extraction, month/year query parameters, and a body
// parser that accepts both JSON and form-encoded payloads with field
// aliases for the record write path.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// deviceTokenHeader carries the opaque client token on every API request.
const deviceTokenHeader = "X-Device-Id"

// amountAliases are tried in order when extracting the record amount. The
// first key present wins, even when its value coerces to zero.
var amountAliases = []string{"amount", "value", "total"}

// labelAliases are tried in order when extracting the record label.
var labelAliases = []string{"label", "title", "memo", "note"}

// DeviceToken extracts the raw device token from the request. The header is
// authoritative; a device_id query parameter serves as fallback for clients
// that cannot set headers.
func DeviceToken(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(deviceTokenHeader)); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get("device_id"))
}

// MonthParams holds parsed year/month values from request parameters.
// Presence tracking matters: an absent month defaults to now, an explicit
// out-of-range month must surface a validation error instead.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using the
// current date in loc as defaults. Non-numeric values keep the defaults;
// numeric out-of-range values are passed through for validation downstream.
func ParseMonthParams(query url.Values, loc *time.Location) MonthParams {
	now := time.Now().In(loc)
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			params.Month = m
		}
	}

	return params
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' || p.body[0] == '[' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// Raw returns the untyped value for key and whether the key was present.
// JSON bodies keep their decoded types; form values come back as strings.
func (p *RequestBodyParser) Raw(key string) (any, bool) {
	if p.jsonData != nil {
		val, ok := p.jsonData[key]
		return val, ok
	}
	if p.formData != nil {
		if vs, ok := p.formData[key]; ok && len(vs) > 0 {
			return vs[0], true
		}
	}
	return nil, false
}

// Amount resolves the record amount across its accepted aliases: the first
// alias present wins and its raw value is returned untouched, ready for
// coercion. A missing amount reports presence false.
func (p *RequestBodyParser) Amount() (any, bool) {
	for _, key := range amountAliases {
		if val, ok := p.Raw(key); ok {
			return val, true
		}
	}
	return nil, false
}

// Label resolves the record label across its accepted aliases.
func (p *RequestBodyParser) Label() string {
	for _, key := range labelAliases {
		if val, ok := p.Raw(key); ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	return ""
}

// ContentType returns the Content-Type header value.
func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an untyped value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters except tab, newline, carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
