package httpx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	Username string `validate:"required,min=1,max=100,username"`
	Password string `validate:"required,bcrypt_len"`
}

func TestValidateStruct_Valid(t *testing.T) {
	assert.Empty(t, ValidateStruct(credentials{Username: "alice", Password: "secret"}))
}

func TestValidateStruct_Required(t *testing.T) {
	details := ValidateStruct(credentials{})

	require.Len(t, details, 2)
	assert.Equal(t, "username", details[0].Field)
	assert.Contains(t, details[0].Message, "required")
	assert.Equal(t, "password", details[1].Field)
}

func TestValidateStruct_UsernameWhitespace(t *testing.T) {
	details := ValidateStruct(credentials{Username: "al ice", Password: "x"})

	require.Len(t, details, 1)
	assert.Equal(t, "Username must not contain whitespace", FirstMessage(details))
}

func TestValidateStruct_UsernameTooLong(t *testing.T) {
	details := ValidateStruct(credentials{Username: strings.Repeat("a", 101), Password: "x"})

	require.Len(t, details, 1)
	assert.Contains(t, details[0].Message, "at most 100")
}

func TestValidateStruct_PasswordTooLong(t *testing.T) {
	details := ValidateStruct(credentials{Username: "bob", Password: strings.Repeat("é", 40)})

	require.Len(t, details, 1)
	assert.Equal(t, "password", details[0].Field)
}

func TestFirstMessage_Empty(t *testing.T) {
	assert.Equal(t, "", FirstMessage(nil))
}
