package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translateError(fmt.Errorf("wrapped: %w", gorm.ErrRecordNotFound)), ErrNotFound)

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "fk_messages_receiver"}
	assert.ErrorIs(t, translateError(fk), ErrMissingReference)

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
}

func TestTranslateUniqueViolation(t *testing.T) {
	cases := map[string]string{
		"idx_users_username":     "username",
		"idx_users_email":        "email",
		"idx_users_firebase_uid": "firebase_uid",
		"friendships_pkey":       "friendship",
		"likes_pkey":             "like",
		"some_other_index":       "",
	}
	for constraint, field := range cases {
		err := translateError(&pgconn.PgError{Code: "23505", ConstraintName: constraint})
		assert.True(t, IsDuplicate(err, field), constraint)
		assert.True(t, IsDuplicate(err, ""), constraint)
	}
	assert.False(t, IsDuplicate(errors.New("x"), ""))
	assert.Equal(t, "email already exists", (&DuplicateError{Field: "email"}).Error())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, EscapeLike(`50%_off\`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}
