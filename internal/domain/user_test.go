package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripboard/tripboard/internal/domain"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, domain.ValidateEmail("ada@example.com"))
	assert.ErrorIs(t, domain.ValidateEmail(""), domain.ErrValidation)
	assert.ErrorIs(t, domain.ValidateEmail("ada@example"), domain.ErrValidation)
	assert.ErrorIs(t, domain.ValidateEmail("ada @example.com"), domain.ErrValidation)
}

func TestRegisterInput_Validate(t *testing.T) {
	valid := domain.RegisterInput{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "secret1"}
	assert.NoError(t, valid.Validate())

	short := valid
	short.Password = "abc"
	assert.ErrorContains(t, short.Validate(), "at least 6 characters")

	noFirst := valid
	noFirst.FirstName = ""
	assert.ErrorIs(t, noFirst.Validate(), domain.ErrValidation)
}

func TestParseVoteType(t *testing.T) {
	v, err := domain.ParseVoteType("like")
	assert.NoError(t, err)
	assert.Equal(t, domain.VoteLike, v)

	_, err = domain.ParseVoteType("meh")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseTaskStatus(t *testing.T) {
	s, err := domain.ParseTaskStatus("in-progress")
	assert.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, s)

	_, err = domain.ParseTaskStatus("blocked")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
