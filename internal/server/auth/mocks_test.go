package auth

import (
	"context"

	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockFinder struct {
	mock.Mock
}

func (m *mockFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockFinder) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}
