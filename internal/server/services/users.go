// Package services contains server-side business logic shared by the HTTP
// and gRPC transports. UserService manages accounts: registration, lookup,
// profile updates, activation state, deletion and avatar URLs.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/dmitrijs2005/userkeeper/internal/dbx"
	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/auth"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userkeeper/internal/server/storage"
	"github.com/google/uuid"
)

// userError carries a client-facing message and unwraps to a common sentinel
// so transports can map it with errors.Is.
type userError struct {
	msg  string
	kind error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.kind }

var (
	ErrEmailTaken        error = &userError{"email already exists", common.ErrAlreadyExists}
	ErrUserNotFound      error = &userError{"user not found", common.ErrorNotFound}
	ErrInactiveOrMissing error = &userError{"user not found or not active", common.ErrorNotFound}
	ErrActiveOrMissing   error = &userError{"user not found or active", common.ErrorNotFound}
	ErrNoAvatar          error = &userError{"avatar not set", common.ErrorNotFound}
	ErrEmptyPatch        error = &userError{"at least one field must be provided", common.ErrValidation}
)

// Authorizer is the mutation gate; *auth.Gateway implements it.
type Authorizer interface {
	AuthorizeMutation(ctx context.Context, actor, target *models.User) error
}

// AvatarStorage issues presigned URLs for avatar objects.
type AvatarStorage interface {
	PresignUpload(ctx context.Context, key string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

type RegisterInput struct {
	Username string
	Name     string
	Surname  string
	Email    string
	Password string
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	passwords   *auth.PasswordHasher
	gate        Authorizer
	avatars     AvatarStorage
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, passwords *auth.PasswordHasher,
	gate Authorizer, avatars AvatarStorage, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		passwords:   passwords,
		gate:        gate,
		avatars:     avatars,
		logger:      logger.With("module", "users"),
	}
}

// Register creates an active ROLE_USER account. The email is stored lowercased.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(in.Email)

	user, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		repo := s.repomanager.Users(tx)

		exists, err := repo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailTaken
		}

		u, err := repo.Create(ctx, &models.User{
			Username:     in.Username,
			Name:         in.Name,
			Surname:      in.Surname,
			Email:        email,
			PasswordHash: hash,
			Roles:        models.Roles{models.RoleUser},
			IsActive:     true,
		})
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return u, err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Get returns the referenced user whether active or not.
func (s *UserService) Get(ctx context.Context, ident auth.Identifier) (*models.User, error) {
	u, err := auth.NewResolver(s.repomanager.Users(s.db)).ByIdentifier(ctx, ident)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx, limit, offset)
}

// Update applies patch to an active user the actor may modify.
func (s *UserService) Update(ctx context.Context, actor *models.User, ident auth.Identifier, patch models.UserPatch) (*models.User, error) {
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	if patch.Email != nil {
		e := strings.ToLower(*patch.Email)
		patch.Email = &e
	}

	user, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*models.User, error) {
		target, err := s.lockTarget(ctx, tx, actor, ident, ErrInactiveOrMissing)
		if err != nil {
			return nil, err
		}

		u, err := s.repomanager.Users(tx).Update(ctx, target.ID, patch)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil, ErrInactiveOrMissing
		case errors.Is(err, common.ErrAlreadyExists):
			return nil, ErrEmailTaken
		}
		return u, err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user updated", "user_id", user.ID, "actor_id", actor.ID)
	return user, nil
}

func (s *UserService) Activate(ctx context.Context, actor *models.User, ident auth.Identifier) (uuid.UUID, error) {
	return s.setActive(ctx, actor, ident, true)
}

func (s *UserService) Deactivate(ctx context.Context, actor *models.User, ident auth.Identifier) (uuid.UUID, error) {
	return s.setActive(ctx, actor, ident, false)
}

func (s *UserService) setActive(ctx context.Context, actor *models.User, ident auth.Identifier, active bool) (uuid.UUID, error) {
	notFound := ErrInactiveOrMissing
	if active {
		notFound = ErrActiveOrMissing
	}

	id, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (uuid.UUID, error) {
		target, err := s.lockTarget(ctx, tx, actor, ident, notFound)
		if err != nil {
			return uuid.Nil, err
		}

		if err := s.repomanager.Users(tx).SetActive(ctx, target.ID, active); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return uuid.Nil, notFound
			}
			return uuid.Nil, err
		}
		return target.ID, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.logger.Info(ctx, "user activity changed", "user_id", id, "active", active, "actor_id", actor.ID)
	return id, nil
}

func (s *UserService) Delete(ctx context.Context, actor *models.User, ident auth.Identifier) (uuid.UUID, error) {
	id, err := dbx.WithTxValue(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (uuid.UUID, error) {
		target, err := s.lockTarget(ctx, tx, actor, ident, ErrUserNotFound)
		if err != nil {
			return uuid.Nil, err
		}

		if err := s.repomanager.Users(tx).Delete(ctx, target.ID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return uuid.Nil, ErrUserNotFound
			}
			return uuid.Nil, err
		}
		return target.ID, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.logger.Info(ctx, "user deleted", "user_id", id, "actor_id", actor.ID)
	return id, nil
}

// AvatarUploadURL stores a fresh avatar key on the target and returns it with
// a presigned PUT URL. The key is only committed when presigning succeeds.
func (s *UserService) AvatarUploadURL(ctx context.Context, actor *models.User, ident auth.Identifier) (key, url string, err error) {
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		target, err := s.lockTarget(ctx, tx, actor, ident, ErrUserNotFound)
		if err != nil {
			return err
		}

		key = storage.AvatarKey(target.ID)
		if url, err = s.avatars.PresignUpload(ctx, key); err != nil {
			return err
		}

		return s.repomanager.Users(tx).SetAvatarKey(ctx, target.ID, key)
	})
	if err != nil {
		return "", "", err
	}
	return key, url, nil
}

// AvatarURL returns a presigned GET URL for the user's avatar.
func (s *UserService) AvatarURL(ctx context.Context, ident auth.Identifier) (string, error) {
	u, err := s.Get(ctx, ident)
	if err != nil {
		return "", err
	}
	if u.AvatarKey == "" {
		return "", ErrNoAvatar
	}
	return s.avatars.PresignDownload(ctx, u.AvatarKey)
}

// lockTarget resolves ident inside tx, locks the row and checks the actor
// may modify it. notFound replaces common.ErrorNotFound from the lookup.
func (s *UserService) lockTarget(ctx context.Context, tx dbx.DBTX, actor *models.User, ident auth.Identifier, notFound error) (*models.User, error) {
	repo := s.repomanager.Users(tx)

	found, err := auth.NewResolver(repo).ByIdentifier(ctx, ident)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, notFound
		}
		return nil, err
	}

	target, err := repo.FindByIDForUpdate(ctx, found.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, notFound
		}
		return nil, err
	}

	if err := s.gate.AuthorizeMutation(ctx, actor, target); err != nil {
		return nil, err
	}
	return target, nil
}
