package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/gotodo/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context) ([]types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	SetAdmin(ctx context.Context, username string, admin bool) (types.User, error)
	Delete(ctx context.Context, username string) error
}

// UserService encapsulates user use-cases. Usernames are normalized to
// lowercase on every path so lookups and stored values always agree.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, normalize(username))
}

// Create persists a new non-admin user with a fresh public ID.
// The caller provides the already-hashed password.
func (s *UserService) Create(ctx context.Context, username, passwordHash string) (types.User, error) {
	user := types.User{
		PublicID:     strings.ReplaceAll(uuid.NewString(), "-", ""),
		Username:     normalize(username),
		Admin:        false,
		PasswordHash: passwordHash,
	}
	return s.repo.Create(ctx, user)
}

func (s *UserService) SetAdmin(ctx context.Context, username string, admin bool) (types.User, error) {
	return s.repo.SetAdmin(ctx, normalize(username), admin)
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	return s.repo.Delete(ctx, normalize(username))
}

func normalize(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
