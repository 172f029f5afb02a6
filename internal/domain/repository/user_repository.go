package repository

import (
	"context"
	"errors"

	"github.com/sailorswift/sailor-swift-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned by lookups when no row matches the key.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned by Create/Update when a unique constraint
	// rejects the row. The constraint is the source of truth for identity
	// uniqueness; callers translate this into their duplicate failure kind.
	ErrDuplicateKey = errors.New("duplicate key")
)

// UserRepository is the narrow store contract the identity resolver depends
// on. All lookups are exact matches on unique keys.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error)
	GetByWallet(ctx context.Context, walletAddress string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
}
