package notify

import (
	"context"
	"log/slog"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
)

// LogSender writes codes to the log instead of sending email. Used when no
// RESEND_API_KEY is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, destination, code string, purpose domain.OTPPurpose) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.WarnContext(ctx, "otp delivery not configured, logging code instead",
		"destination", destination,
		"purpose", string(purpose),
		"code", code,
	)
	return nil
}
