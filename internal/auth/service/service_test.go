package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
	"github.com/monuwu/ClickTales-sub001/internal/auth/store/drivers/sqlite"
	"github.com/monuwu/ClickTales-sub001/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// captureSender records delivered codes instead of sending email so tests
// can read them back.
type captureSender struct {
	mu    sync.Mutex
	codes map[string]string // destination -> last code
}

func newCaptureSender() *captureSender {
	return &captureSender{codes: make(map[string]string)}
}

func (c *captureSender) Send(_ context.Context, destination, code string, _ domain.OTPPurpose) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[destination] = code
	return nil
}

func (c *captureSender) last(destination string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[destination]
}

type testServices struct {
	Store       *sqlite.Store
	Signer      *jwtx.HS256
	Sender      *captureSender
	Tokens      *TokenService
	OTPs        *OTPService
	Credentials *CredentialService
	Signup      *SignupService
	TwoFactor   *TwoFactorService
	Users       *UserService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	signer, err := jwtx.NewHS256("test-secret", "clicktales-test")
	require.NoError(t, err)

	sender := newCaptureSender()

	tokens := &TokenService{
		Signer:     signer,
		Store:      s,
		Issuer:     "clicktales-test",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	otps := &OTPService{Store: s, Sender: sender}
	creds := &CredentialService{Store: s, Tokens: tokens, Issuer: "ClickTales"}

	return &testServices{
		Store:       s,
		Signer:      signer,
		Sender:      sender,
		Tokens:      tokens,
		OTPs:        otps,
		Credentials: creds,
		Signup:      &SignupService{Store: s, OTPs: otps, Tokens: tokens},
		TwoFactor:   &TwoFactorService{Credentials: creds, OTPs: otps},
		Users:       &UserService{Store: s},
	}
}

func registerUser(t *testing.T, ts *testServices, email, username, password string) domain.User {
	t.Helper()

	_, user, err := ts.Credentials.Register(context.Background(), email, username, username, password)
	require.NoError(t, err)
	return user
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func within(t *testing.T, want, got time.Time, tolerance time.Duration) {
	t.Helper()
	require.WithinDuration(t, want, got, tolerance)
}
