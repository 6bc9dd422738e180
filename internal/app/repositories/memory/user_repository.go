package memory

import (
	"context"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

// UserRepository is an in-memory repositories.UserRepository.
type UserRepository struct {
	t *table[*models.User]
}

// NewUserRepository creates an empty user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{t: newTable(cloneUser)}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Location = cloneString(u.Location)
	c.ContactNo = cloneString(u.ContactNo)
	return &c
}

// conflictLocked checks the unique fields against every other user. Caller holds the lock.
func (r *UserRepository) conflictLocked(u *models.User) error {
	for id, row := range r.t.rows {
		if id == u.ID {
			continue
		}
		if row.val.Email == u.Email {
			return apperrors.ErrEmailAlreadyExists
		}
		if row.val.FullName == u.FullName {
			return apperrors.ErrNameAlreadyExists
		}
	}
	return nil
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	user.ID = newID()
	if err := r.conflictLocked(user); err != nil {
		user.ID = ""
		return err
	}
	user.CreatedAt = stamp(user.CreatedAt)
	r.t.insertLocked(user.ID, user)
	return nil
}

// GetByID returns the user with the given id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := r.t.get(id)
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (r *UserRepository) findOne(match func(*models.User) bool) (*models.User, error) {
	found := r.t.filter(match)
	if len(found) == 0 {
		return nil, apperrors.ErrUserNotFound
	}
	return found[0], nil
}

// GetByEmail returns the user with the given email (exact match).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(func(u *models.User) bool { return u.Email == email })
}

// GetByFullName returns the user with the given full name (exact match).
func (r *UserRepository) GetByFullName(ctx context.Context, fullName string) (*models.User, error) {
	return r.findOne(func(u *models.User) bool { return u.FullName == fullName })
}

// GetByIDs returns the existing users among ids.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.t.get(id); ok {
			out[id] = u
		}
	}
	return out, nil
}

// Update replaces the stored profile.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	existing, ok := r.t.rows[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if err := r.conflictLocked(user); err != nil {
		return err
	}
	existing.val = cloneUser(user)
	return nil
}

// Delete removes the user. References held by other records are left dangling.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if !r.t.delete(id) {
		return apperrors.ErrUserNotFound
	}
	return nil
}
