package cryptox

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOTPCodeRange(t *testing.T) {
	t.Parallel()

	for range 200 {
		code, err := GenerateOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateTokenAndFingerprint(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, tok, 43)

	// Fingerprints are deterministic and do not reveal the token.
	require.Equal(t, FingerprintToken(tok), FingerprintToken(tok))
	require.NotEqual(t, tok, FingerprintToken(tok))

	_, err = GenerateToken(0)
	require.Error(t, err)
}
