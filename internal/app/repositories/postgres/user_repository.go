package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
	"github.com/yigit/greenleaf/internal/pkg/dberrors"
)

const userColumns = `id, full_name, email, password, profile_image, location, contact_no, role_type, created_at`

// UserRepository handles user database operations
type UserRepository struct {
	db querier
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db querier) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Password, &u.ProfileImage,
		&u.Location, &u.ContactNo, &role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.RoleType = models.RoleType(role)
	return &u, nil
}

func mapUserWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, usersEmailKey):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, usersFullNameKey):
		return apperrors.ErrNameAlreadyExists
	}
	return nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	id := newID()
	createdAt := stamp(user.CreatedAt)
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, user.FullName, user.Email, user.Password, user.ProfileImage,
		user.Location, user.ContactNo, string(user.RoleType), createdAt)
	if err != nil {
		if mapped := mapUserWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	user.ID = id
	user.CreatedAt = createdAt
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, apperrors.ErrUserNotFound
	}
	return r.getOne(ctx, `id = $1`, id)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

// GetByFullName retrieves a user by full name
func (r *UserRepository) GetByFullName(ctx context.Context, fullName string) (*models.User, error) {
	return r.getOne(ctx, `full_name = $1`, fullName)
}

// GetByIDs retrieves the existing users among ids
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, valid)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	users, err := collect(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// Update writes the profile fields of user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	if !validID(user.ID) {
		return apperrors.ErrUserNotFound
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET full_name = $2, email = $3, password = $4, profile_image = $5, location = $6, contact_no = $7
		WHERE id = $1`,
		user.ID, user.FullName, user.Email, user.Password, user.ProfileImage, user.Location, user.ContactNo)
	if err != nil {
		if mapped := mapUserWriteError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return apperrors.ErrUserNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
