package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sailorswift/sailor-swift-api/internal/domain/entity"
	"github.com/sailorswift/sailor-swift-api/internal/domain/repository"
)

const userColumns = `id, email, username, first_name, last_name, password_hash,
	google_id, wallet_address, is_active, is_verified, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, first_name, last_name, password_hash, google_id, wallet_address, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, is_active, created_at, updated_at
	`, u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash, u.GoogleID, u.WalletAddress, u.IsVerified)

	if err := row.Scan(&u.ID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return translateErr(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	return r.getBy(ctx, "google_id", googleID)
}

func (r *UserRepository) GetByWallet(ctx context.Context, walletAddress string) (*entity.User, error) {
	return r.getBy(ctx, "wallet_address", walletAddress)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE `+column+` = $1
	`, value)
	if err := scanUser(row, u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, username = $2, first_name = $3, last_name = $4,
		    password_hash = $5, google_id = $6, wallet_address = $7,
		    is_active = $8, is_verified = $9, updated_at = $10
		WHERE id = $11
	`, u.Email, u.Username, u.FirstName, u.LastName, u.PasswordHash,
		u.GoogleID, u.WalletAddress, u.IsActive, u.IsVerified, u.UpdatedAt, u.ID)
	if err != nil {
		return translateErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row, u *entity.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
		&u.PasswordHash, &u.GoogleID, &u.WalletAddress, &u.IsActive, &u.IsVerified,
		&u.CreatedAt, &u.UpdatedAt)
}

// translateErr maps a unique-constraint violation (SQLSTATE 23505) onto the
// repository sentinel so two racing inserts surface as a duplicate, not as
// an infrastructure fault.
func translateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrDuplicateKey
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
