package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/google/uuid"
)

// UserFinder is the read side of the user repository the resolver needs.
type UserFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Resolver maps token subjects and client identifiers to users.
type Resolver struct {
	users UserFinder
}

func NewResolver(users UserFinder) *Resolver {
	return &Resolver{users: users}
}

// BySubject loads the user a token subject refers to. A subject that is not
// a user id resolves to common.ErrorNotFound.
func (r *Resolver) BySubject(ctx context.Context, subject string) (*models.User, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, common.ErrorNotFound
	}
	return r.ByIdentifier(ctx, IdentifierFromID(id))
}

// ByIdentifier performs exactly one lookup, by id or by email depending on
// the variant of ident.
func (r *Resolver) ByIdentifier(ctx context.Context, ident Identifier) (*models.User, error) {
	var (
		user *models.User
		err  error
	)

	switch ident.Kind() {
	case IdentifierID:
		id, _ := ident.ID()
		user, err = r.users.FindByID(ctx, id)
	case IdentifierEmail:
		email, _ := ident.Email()
		user, err = r.users.FindByEmail(ctx, email)
	default:
		return nil, common.ErrInvalidIdentifier
	}

	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("resolve user %s: %w", ident, err)
	}

	return user, nil
}
