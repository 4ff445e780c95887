// Package message builds iDEAL request documents and parses acquirer
// responses.
//
// Requests move through a strict lifecycle: populated, then signed, then
// serialized. Serializing an unsigned request is an error; an unsigned
// document must never cross the transport boundary.
package message

import (
	"errors"
	"fmt"
	"strings"
)

// Wire constants shared by both protocol generations.
const (
	// Currency is the only currency iDEAL supports.
	Currency = "EUR"
	// Language is the only language iDEAL supports.
	Language = "nl"
	// TimestampFormat renders creation timestamps in UTC with fixed
	// millisecond padding.
	TimestampFormat = "2006-01-02T15:04:05.000Z"
)

// Field length ceilings mandated by the protocol.
const (
	MaxOrderIDLength      = 12
	MaxDescriptionLength  = 32
	MaxEntranceCodeLength = 40
	MaxAmountLength       = 12
)

// diacriticalCharacters are Latin-1 letters the acquirers reject in any
// user-supplied field.
const diacriticalCharacters = "ÀÁÂÃÄÅÇÈÉÊËÌÍÎÏÑÒÓÔÕÖØÙÚÛÜÝàáâãäåçèéêëìíîïñòóôõöøùúûüý"

// ErrUnsignedRequest is returned when an unsigned request is serialized
// for transmission.
var ErrUnsignedRequest = errors.New("request must be signed before serialization")

// ValidationError reports a request field that violates a protocol
// constraint. It names the field and the constraint so the caller can fix
// the input; no network I/O has happened yet.
type ValidationError struct {
	Field      string
	Value      string
	Constraint string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s (%s)", e.Field, e.Value, e.Constraint)
}

// MissingOptionsError lists every required option absent from a request,
// not just the first.
type MissingOptionsError struct {
	Options []string
}

func (e *MissingOptionsError) Error() string {
	return fmt.Sprintf("missing required options: %s", strings.Join(e.Options, ", "))
}

// Status is the outcome of a payment transaction as reported by a status
// response.
type Status int

const (
	StatusUnknown Status = iota
	StatusSuccess
	StatusCancelled
	StatusExpired
	StatusOpen
	StatusFailure
)

// ParseStatus maps a response status text to a Status, case-insensitively.
func ParseStatus(text string) Status {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "success":
		return StatusSuccess
	case "cancelled":
		return StatusCancelled
	case "expired":
		return StatusExpired
	case "open":
		return StatusOpen
	case "failure":
		return StatusFailure
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusCancelled:
		return "cancelled"
	case StatusExpired:
		return "expired"
	case StatusOpen:
		return "open"
	case StatusFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Issuer is one entry of the issuer directory: a consumer bank the
// merchant can offer on its payment page. Order follows document order.
type Issuer struct {
	ID   string
	Name string
}

// ErrorTypeForCode maps an acquirer error code prefix to its category.
// Unknown or short codes map to the empty string.
func ErrorTypeForCode(code string) string {
	if len(code) < 2 {
		return ""
	}
	switch code[:2] {
	case "IX":
		return "xml"
	case "SO":
		return "system"
	case "SE":
		return "security"
	case "BR":
		return "value"
	case "AP":
		return "application"
	default:
		return ""
	}
}

func containsDiacriticals(s string) bool {
	return strings.ContainsAny(s, diacriticalCharacters)
}
