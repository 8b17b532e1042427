// Package domain holds typed identifiers shared across features.
//
// IDs are distinct named UUID types so the compiler rejects cross-type
// assignment (a UserID can never be passed where an EntryID is expected).
// Parse functions enforce the trust-boundary invariant: IDs must be valid,
// non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "timeclock/pkg/domain-errors"
)

// UserID identifies a user. Users are owned by the identity provider; this
// service only references them.
type UserID uuid.UUID

// EntryID is the externally visible identifier of a time entry (one
// clock-in/clock-out session).
type EntryID uuid.UUID

// BreakID identifies a break period within a time entry.
type BreakID uuid.UUID

// AuditID identifies an audit trail entry.
type AuditID uuid.UUID

func parse(s string, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID validates and returns a UserID.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parse(s, "user id")
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseEntryID validates and returns an EntryID.
func ParseEntryID(s string) (EntryID, error) {
	parsed, err := parse(s, "entry id")
	if err != nil {
		return EntryID{}, err
	}
	return EntryID(parsed), nil
}

func (id UserID) String() string  { return uuid.UUID(id).String() }
func (id EntryID) String() string { return uuid.UUID(id).String() }
func (id BreakID) String() string { return uuid.UUID(id).String() }
func (id AuditID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id EntryID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id BreakID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id AuditID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling renders IDs as canonical UUID strings in JSON payloads.

func (id UserID) MarshalText() ([]byte, error)  { return []byte(id.String()), nil }
func (id EntryID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id BreakID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id AuditID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid user id")
	}
	*id = UserID(parsed)
	return nil
}

func (id *EntryID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid entry id")
	}
	*id = EntryID(parsed)
	return nil
}

func (id *BreakID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid break id")
	}
	*id = BreakID(parsed)
	return nil
}

func (id *AuditID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid audit id")
	}
	*id = AuditID(parsed)
	return nil
}

// NewUserID returns a fresh random UserID. Mostly useful in tests; production
// user IDs come from the identity provider.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewEntryID returns a fresh random EntryID.
func NewEntryID() EntryID { return EntryID(uuid.New()) }

// NewBreakID returns a fresh random BreakID.
func NewBreakID() BreakID { return BreakID(uuid.New()) }

// NewAuditID returns a fresh random AuditID.
func NewAuditID() AuditID { return AuditID(uuid.New()) }
