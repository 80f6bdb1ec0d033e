// Package notify delivers one-time codes to users. The production sender
// goes through Resend; deployments without an API key fall back to logging
// the code, which is enough for local development.
package notify

import (
	"context"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
)

// Sender delivers a one-time code to a destination (an email address today).
type Sender interface {
	Send(ctx context.Context, destination, code string, purpose domain.OTPPurpose) error
}
