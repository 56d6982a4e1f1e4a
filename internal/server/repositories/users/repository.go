package users

import (
	"context"

	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/google/uuid"
)

// Repository is the storage contract for user accounts. Lookups return
// common.ErrorNotFound when nothing matches; writes that break email
// uniqueness return common.ErrAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// FindByIDForUpdate is FindByID holding a row lock; use inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	// Update applies patch to an active user.
	Update(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error)
	// SetActive flips is_active and fails with common.ErrorNotFound when the
	// user is missing or already in the requested state.
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetAvatarKey(ctx context.Context, id uuid.UUID, key string) error
}
