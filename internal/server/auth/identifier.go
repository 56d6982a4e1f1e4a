package auth

import (
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/google/uuid"
)

// IdentifierKind tags which variant of Identifier is set.
type IdentifierKind int

const (
	IdentifierID IdentifierKind = iota + 1
	IdentifierEmail
)

// Identifier is a user reference supplied by a client: either a user id or
// an email address. Build it with ParseIdentifier, IdentifierFromID or
// IdentifierFromEmail.
type Identifier struct {
	kind  IdentifierKind
	id    uuid.UUID
	email string
}

func IdentifierFromID(id uuid.UUID) Identifier {
	return Identifier{kind: IdentifierID, id: id}
}

// IdentifierFromEmail lowercases email; addresses are stored lowercased.
func IdentifierFromEmail(email string) Identifier {
	return Identifier{kind: IdentifierEmail, email: strings.ToLower(email)}
}

// ParseIdentifier classifies raw as a user id or an email. Anything else is
// common.ErrInvalidIdentifier.
func ParseIdentifier(raw string) (Identifier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identifier{}, common.ErrInvalidIdentifier
	}

	if id, err := uuid.Parse(raw); err == nil {
		return IdentifierFromID(id), nil
	}

	if addr, err := mail.ParseAddress(raw); err == nil && addr.Address == raw {
		return IdentifierFromEmail(raw), nil
	}

	return Identifier{}, common.ErrInvalidIdentifier
}

func (i Identifier) Kind() IdentifierKind { return i.kind }

// ID returns the id variant. ok is false for emails.
func (i Identifier) ID() (id uuid.UUID, ok bool) {
	return i.id, i.kind == IdentifierID
}

// Email returns the email variant. ok is false for ids.
func (i Identifier) Email() (email string, ok bool) {
	return i.email, i.kind == IdentifierEmail
}

func (i Identifier) String() string {
	switch i.kind {
	case IdentifierID:
		return i.id.String()
	case IdentifierEmail:
		return i.email
	}
	return ""
}
