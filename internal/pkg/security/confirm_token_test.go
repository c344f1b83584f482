package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestConfirmTokenRoundTrip(t *testing.T) {
	digest := DigestChange([]byte(`{"kind":"add"}`))

	token, err := GenerateConfirmToken(7, 12, digest, "400.00", time.Minute, testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyConfirmToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, uint(12), claims.PlanID)
	assert.Equal(t, digest, claims.ChangeDigest)
	assert.Equal(t, "400.00", claims.ProposedTotal)
}

func TestConfirmTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateConfirmToken(7, 12, "d", "1.00", time.Minute, testSecret)
	require.NoError(t, err)

	_, err = VerifyConfirmToken(token, "other-secret")
	assert.Error(t, err)
}

func TestConfirmTokenRejectsTampering(t *testing.T) {
	token, err := GenerateConfirmToken(7, 12, "d", "1.00", time.Minute, testSecret)
	require.NoError(t, err)

	tampered := "x" + token[1:]
	_, err = VerifyConfirmToken(tampered, testSecret)
	assert.Error(t, err)

	_, err = VerifyConfirmToken("not-a-token", testSecret)
	assert.Error(t, err)
}

func TestConfirmTokenExpiry(t *testing.T) {
	token, err := GenerateConfirmToken(7, 12, "d", "1.00", -time.Second, testSecret)
	require.NoError(t, err)

	_, err = VerifyConfirmToken(token, testSecret)
	assert.ErrorContains(t, err, "expired")
}

func TestDigestChangeIsStable(t *testing.T) {
	a := DigestChange([]byte("payload"))
	b := DigestChange([]byte("payload"))
	c := DigestChange([]byte("payload2"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestConfirmTokenRequiresSecret(t *testing.T) {
	_, err := GenerateConfirmToken(1, 1, "d", "1.00", time.Minute, "")
	assert.Error(t, err)

	_, err = VerifyConfirmToken("a.b", "")
	assert.Error(t, err)
}
