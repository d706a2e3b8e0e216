// Package cursor implements the opaque keyset pagination token used by
// chronologically sorted event listings. The token encodes the sort key
// (start date, start time, seq) of the last row a client saw, which keeps
// pages stable while new events are inserted between requests.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"regexp"
)

// ErrInvalid marks a structurally or syntactically broken token. Callers must
// treat it as "start from the beginning", never as a failure to surface.
var ErrInvalid = errors.New("invalid cursor")

const midnight = "00:00:00"

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// Cursor is the decoded event sort key.
type Cursor struct {
	Date string
	Time string
	Seq  int64
}

// payload is the wire shape. Seq is a pointer so that a missing "i" is
// distinguishable from zero during validation.
type payload struct {
	D string `json:"d"`
	T string `json:"t"`
	I *int64 `json:"i"`
}

// Encode builds an opaque URL-safe token from a (date, time, seq) sort key.
// A nil or empty time encodes as midnight so the tuple stays totally ordered.
func Encode(date string, timeOfDay *string, seq int64) string {
	t := midnight
	if timeOfDay != nil && *timeOfDay != "" {
		t = *timeOfDay
	}
	raw, _ := json.Marshal(payload{D: date, T: t, I: &seq})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode reverses Encode. The date must match YYYY-MM-DD, the time HH:MM:SS
// and the seq must be present and numeric. Any failure, whether base64, JSON
// shape or field pattern, yields ErrInvalid.
func Decode(token string) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalid
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, ErrInvalid
	}
	if p.I == nil || !datePattern.MatchString(p.D) || !timePattern.MatchString(p.T) {
		return nil, ErrInvalid
	}

	return &Cursor{Date: p.D, Time: p.T, Seq: *p.I}, nil
}
