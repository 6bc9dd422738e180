package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsDuplicateConstraintError(t *testing.T) {
	err := fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	assert.True(t, IsDuplicateConstraintError(err, "users_email_key"))
	assert.False(t, IsDuplicateConstraintError(err, "users_full_name_key"))
	assert.False(t, IsDuplicateConstraintError(errors.New("boom"), "users_email_key"))
}

func TestIsDuplicateKeyIndexError(t *testing.T) {
	err := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: `E11000 duplicate key error collection: greenleaf.users index: fullName_1 dup key: { fullName: "Ann" }`,
	}}}

	assert.True(t, IsDuplicateKeyIndexError(err, "fullName_1"))
	assert.False(t, IsDuplicateKeyIndexError(err, "email_1"))
	assert.False(t, IsDuplicateKeyIndexError(errors.New("index: email_1 "), "email_1"))
}
