package jwtx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testIssuer = "clicktales-test"

func newTestHS256(t *testing.T) *HS256 {
	t.Helper()
	h, err := NewHS256("test-secret-at-least-32-bytes-long!!", testIssuer)
	require.NoError(t, err)
	return h
}

func TestNewHS256RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewHS256("", testIssuer)
	require.ErrorIs(t, err, ErrEmptySecret)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()
	h := newTestHS256(t)

	claims := NewAccessClaims(
		"01JARZ3NDEKTSV4RRFFQ69G5FA",
		"a@x.com", "alice", "Alice", "USER",
		time.Hour, testIssuer, time.Now(),
	)

	token, err := h.Sign(claims)
	require.NoError(t, err)

	got, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "01JARZ3NDEKTSV4RRFFQ69G5FA", got.Subject)
	require.Equal(t, "a@x.com", got.Email)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "USER", got.Role)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	t.Parallel()
	h := newTestHS256(t)

	token, err := h.Sign(NewAccessClaims(
		"u1", "a@x.com", "alice", "Alice", "USER",
		time.Hour, testIssuer, time.Now(),
	))
	require.NoError(t, err)

	// Flip a byte of the signature segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = h.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()
	h := newTestHS256(t)

	token, err := h.Sign(NewAccessClaims(
		"u1", "a@x.com", "alice", "Alice", "USER",
		-time.Minute, testIssuer, time.Now().Add(-time.Hour),
	))
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	other, err := NewHS256("a-different-secret-entirely-here!!!!", testIssuer)
	require.NoError(t, err)

	token, err := other.Sign(NewAccessClaims(
		"u1", "a@x.com", "alice", "Alice", "USER",
		time.Hour, testIssuer, time.Now(),
	))
	require.NoError(t, err)

	h := newTestHS256(t)
	_, err = h.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	t.Parallel()
	h := newTestHS256(t)

	_, err := h.Verify("not-a-jwt")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	other, err := NewHS256("test-secret-at-least-32-bytes-long!!", "someone-else")
	require.NoError(t, err)

	token, err := other.Sign(NewAccessClaims(
		"u1", "a@x.com", "alice", "Alice", "USER",
		time.Hour, "someone-else", time.Now(),
	))
	require.NoError(t, err)

	h := newTestHS256(t)
	_, err = h.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}
