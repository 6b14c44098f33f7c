package validators

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name  string `json:"name" validate:"required,notblank,min=3"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestValidateNotBlank(t *testing.T) {
	v := NewValidator()

	err := v.Validate(sample{Name: "   "})
	assert.Error(t, err)
	assert.Equal(t, "name is required", Message(err))
}

func TestValidateMessages(t *testing.T) {
	v := NewValidator()

	assert.Equal(t, "name is required", Message(v.Validate(sample{})))
	assert.Equal(t, "name must be at least 3 characters", Message(v.Validate(sample{Name: "ab"})))
	assert.Equal(t, "email must be a valid email address", Message(v.Validate(sample{Name: "abc", Email: "nope"})))
	assert.NoError(t, v.Validate(sample{Name: "abc", Email: "a@b.co"}))
}

func TestMessageForForeignError(t *testing.T) {
	assert.Equal(t, "invalid request payload", Message(errors.New("boom")))
}

type secret struct {
	Password string `json:"password" validate:"required,maxbytes=8"`
}

func TestValidateMaxBytesCountsBytes(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Validate(secret{Password: "abcdefgh"}))
	assert.NoError(t, v.Validate(secret{Password: "éééé"}))

	err := v.Validate(secret{Password: "ééééé"})
	assert.Error(t, err)
	assert.Equal(t, "password must be at most 8 bytes", Message(err))
}
