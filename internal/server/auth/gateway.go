// Package auth holds the authentication and authorization core: password
// verification, bearer tokens, identity resolution, the permission rules for
// mutating users and the Gateway that composes them for the transports.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
)

// Token is what a successful login returns.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Gateway exposes login, request authentication and the mutation gate.
type Gateway struct {
	resolver  *Resolver
	tokens    *TokenService
	passwords *PasswordHasher
	perms     *Evaluator
	logger    logging.Logger

	// dummyHash is compared against when the email is unknown so that both
	// login failures cost one bcrypt comparison.
	dummyHash string
}

func NewGateway(resolver *Resolver, tokens *TokenService, passwords *PasswordHasher, perms *Evaluator, logger logging.Logger) (*Gateway, error) {
	dummy, err := passwords.Hash("userkeeper-dummy-password")
	if err != nil {
		return nil, err
	}
	return &Gateway{
		resolver:  resolver,
		tokens:    tokens,
		passwords: passwords,
		perms:     perms,
		logger:    logger.With("module", "auth"),
		dummyHash: dummy,
	}, nil
}

// Login checks the credentials and issues a token. An unknown email and a
// wrong password both return common.ErrorUnauthorized.
func (g *Gateway) Login(ctx context.Context, email, password string) (*Token, error) {
	user, err := g.resolver.ByIdentifier(ctx, IdentifierFromEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			g.passwords.Verify(password, g.dummyHash)
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if !g.passwords.Verify(password, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	access, expiresAt, err := g.tokens.Issue(user.ID.String())
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	g.logger.Info(ctx, "user logged in", "user_id", user.ID)

	return &Token{AccessToken: access, TokenType: "bearer", ExpiresAt: expiresAt}, nil
}

// Authenticate turns a bearer token into the acting user. Any token problem
// or an unknown subject is common.ErrUnauthenticated; storage failures are
// returned as they are.
func (g *Gateway) Authenticate(ctx context.Context, token string) (*models.User, error) {
	subject, err := g.tokens.Validate(token)
	if err != nil {
		return nil, common.ErrUnauthenticated
	}

	user, err := g.resolver.BySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	return user, nil
}

// AuthorizeMutation returns common.ErrForbidden unless actor may modify target.
func (g *Gateway) AuthorizeMutation(ctx context.Context, actor, target *models.User) error {
	d := g.perms.Decide(actor, target)
	if !d.Allowed {
		g.logger.Debug(ctx, "mutation denied", "actor_id", actor.ID, "target_id", target.ID, "rule", d.Rule)
		return common.ErrForbidden
	}
	return nil
}
