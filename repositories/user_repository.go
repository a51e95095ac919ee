package repositories

import (
	"context"
	"errors"
	"fmt"
	"storefront/models"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const accountQuery = `
	SELECT u.id, u.email, u.password, u.role,
	       COALESCE(p.full_name, ''), COALESCE(p.phone, ''), COALESCE(p.street, ''),
	       COALESCE(p.postal_code, ''), COALESCE(p.city, ''),
	       u.created_at, u.updated_at
	FROM users u
	LEFT JOIN user_profiles p ON p.user_id = u.id
`

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.QueryRow(ctx, accountQuery+where, arg).Scan(
		&a.ID, &a.Email, &a.Password, &a.Role,
		&a.FullName, &a.Phone, &a.Street, &a.PostalCode, &a.City,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

// FindByEmail compares e-mails case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, `WHERE LOWER(u.email) = LOWER($1)`, strings.TrimSpace(email))
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*models.Account, error) {
	return r.findOne(ctx, `WHERE u.id = $1`, id)
}

// Create stores the users row and its profile together. account.Password must
// already be hashed.
func (r *UserRepository) Create(ctx context.Context, account *models.Account) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	query := `
		INSERT INTO users (email, password, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err = tx.QueryRow(ctx, query, account.Email, account.Password, account.Role, now, now).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgUniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	profileQuery := `
		INSERT INTO user_profiles (user_id, full_name, phone, street, postal_code, city, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.Exec(ctx, profileQuery,
		account.ID, account.FullName, account.Phone, account.Street,
		account.PostalCode, account.City, now,
	); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, account *models.Account) error {
	now := time.Now()
	tag, err := r.db.Exec(ctx, `UPDATE users SET updated_at = $1 WHERE id = $2`, now, account.ID)
	if err != nil {
		return fmt.Errorf("touch user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}

	query := `
		INSERT INTO user_profiles (user_id, full_name, phone, street, postal_code, city, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			phone = EXCLUDED.phone,
			street = EXCLUDED.street,
			postal_code = EXCLUDED.postal_code,
			city = EXCLUDED.city,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Exec(ctx, query,
		account.ID, account.FullName, account.Phone, account.Street,
		account.PostalCode, account.City, now,
	); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	account.UpdatedAt = now
	return nil
}
