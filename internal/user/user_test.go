package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dense-analysis/tradewarp/internal/apperror"
	"github.com/dense-analysis/tradewarp/internal/model"
)

func testUser(hash, salt string) *model.User {
	return &model.User{Password: hash, Salt: salt}
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name    string
		request Request
		valid   bool
	}{
		{
			"all fields in range",
			Request{Username: "w0rpl", Password: "hunter22", Email: "w0rp@example.com"},
			true,
		},
		{
			"username too short",
			Request{Username: "w0rp", Password: "hunter22", Email: "w0rp@example.com"},
			false,
		},
		{
			"username too long",
			Request{Username: "w0rp-the-sixteen", Password: "hunter22", Email: "w0rp@example.com"},
			false,
		},
		{
			"password too short",
			Request{Username: "w0rpl", Password: "hunt22", Email: "w0rp@example.com"},
			false,
		},
		{
			"email too short",
			Request{Username: "w0rpl", Password: "hunter22", Email: "a@b.co"},
			false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.request.Validate()

			if test.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	request := Request{Username: "abc", Password: "short", Email: "a@b"}
	err := request.Validate()

	require.Error(t, err)

	violations, ok := err.(apperror.Violations)
	require.True(t, ok)
	assert.Len(t, violations, 3)
}

func TestHashPasswordRoundTrip(t *testing.T) {
	salt, err := newSalt()
	require.NoError(t, err)

	hash, err := hashPassword("hunter22", salt)
	require.NoError(t, err)

	user := testUser(hash, salt)

	assert.True(t, checkPassword(user, "hunter22"))
	assert.False(t, checkPassword(user, "hunter23"))
}

func TestCheckPasswordUsesSalt(t *testing.T) {
	salt, err := newSalt()
	require.NoError(t, err)

	hash, err := hashPassword("hunter22", salt)
	require.NoError(t, err)

	otherSalt, err := newSalt()
	require.NoError(t, err)

	// The same password with a different stored salt must not verify.
	assert.False(t, checkPassword(testUser(hash, otherSalt), "hunter22"))
}
