package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedTokenRoundTrip(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, expiresAt, err := signer.Generate("job-1", "exports/timetable.csv")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	jobID, relPath, parsedExp, err := signer.Parse(token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, "exports/timetable.csv", relPath)
	assert.Equal(t, expiresAt.Unix(), parsedExp.Unix())
}

func TestSignedTokenRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	token, _, err := signer.Generate("job-1", "exports/timetable.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[0] = "job-2"
	_, _, _, err = signer.Parse(strings.Join(parts, "."), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}

func TestSignedTokenRejectsWrongSecret(t *testing.T) {
	token, _, err := NewSignedURLSigner("secret-a", time.Hour).Generate("job-1", "f.csv")
	require.NoError(t, err)

	_, _, _, err = NewSignedURLSigner("secret-b", time.Hour).Parse(token, false)
	require.Error(t, err)
}

func TestSignedTokenExpiry(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Millisecond)

	token, _, err := signer.Generate("job-1", "f.csv")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, _, _, err = signer.Parse(token, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")

	// Cleanup routines may still resolve expired tokens.
	jobID, _, _, err := signer.Parse(token, true)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
}

func TestSignedTokenRejectsMalformedInput(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	for _, token := range []string{"", "a.b", "a.b.c.d.e"} {
		_, _, _, err := signer.Parse(token, false)
		assert.Error(t, err)
	}
}

func TestGenerateRequiresInputs(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)

	_, _, err := signer.Generate("", "f.csv")
	assert.Error(t, err)
	_, _, err = signer.Generate("job-1", "")
	assert.Error(t, err)
}
