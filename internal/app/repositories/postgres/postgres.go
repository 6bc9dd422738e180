// Package postgres implements the repositories on PostgreSQL through pgx.
// Id lists are TEXT[] columns so the document-shaped model maps one to one.
package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yigit/greenleaf/internal/app/repositories"
	"github.com/yigit/greenleaf/internal/db"
)

// Unique constraint names from 001_init.sql
const (
	usersEmailKey    = "users_email_key"
	usersFullNameKey = "users_full_name_key"
)

// querier is the subset of pgxpool.Pool the repositories use
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	_ repositories.UserRepository      = (*UserRepository)(nil)
	_ repositories.CommunityRepository = (*CommunityRepository)(nil)
	_ repositories.PostRepository      = (*PostRepository)(nil)
	_ repositories.ReplyRepository     = (*ReplyRepository)(nil)
)

// NewRepositories builds all repositories on the pool of database.
func NewRepositories(database *db.PostgresDB) *repositories.Repositories {
	return &repositories.Repositories{
		UserRepository:      NewUserRepository(database.Pool),
		CommunityRepository: NewCommunityRepository(database.Pool),
		PostRepository:      NewPostRepository(database.Pool),
		ReplyRepository:     NewReplyRepository(database.Pool),
		Close: func(context.Context) error {
			database.Close()
			return nil
		},
	}
}

// validID reports whether id has the shape of a generated key.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func newID() string {
	return uuid.New().String()
}

func stamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

// ids never scans as NULL, so callers always get a non-nil slice
func ids(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// collect scans every row with scan and closes rows.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
