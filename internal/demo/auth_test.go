package demo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyKnownCode(t *testing.T) {
	a := NewAuth("test-secret", []string{"alpha-tester"}, 30*24*time.Hour)

	token, err := a.Verify("alpha-tester")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := a.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alpha-tester", claims.InviteCode)
	assert.NotEmpty(t, claims.Subject)
}

func TestVerifyUnknownCode(t *testing.T) {
	a := NewAuth("test-secret", []string{"alpha-tester"}, time.Hour)

	_, err := a.Verify("not-a-code")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewAuth("secret-a", []string{"alpha-tester"}, time.Hour)
	verifier := NewAuth("secret-b", []string{"alpha-tester"}, time.Hour)

	token, err := issuer.Verify("alpha-tester")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	a := NewAuth("test-secret", []string{"alpha-tester"}, time.Hour)
	_, err := a.Validate("not.a.jwt")
	assert.Error(t, err)
}
