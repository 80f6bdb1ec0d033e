package notify

import (
	"context"
	"fmt"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"

	"github.com/resend/resend-go/v3"
)

type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) Send(ctx context.Context, destination, code string, purpose domain.OTPPurpose) error {
	subject, intro := purposeCopy(purpose)

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{destination},
		Subject: subject,
		Html: fmt.Sprintf(
			`<p>%s</p><p style="font-size:24px;letter-spacing:4px;"><strong>%s</strong></p><p>This code expires in 10 minutes. If you did not request it, you can ignore this email.</p>`,
			intro, code),
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}

func purposeCopy(purpose domain.OTPPurpose) (subject, intro string) {
	switch purpose {
	case domain.OTPPurposeSignup:
		return "Verify your ClickTales account", "Welcome to ClickTales! Use this code to verify your email address:"
	case domain.OTPPurposeLogin:
		return "Your ClickTales login code", "Use this code to finish signing in:"
	case domain.OTPPurposeEnable2FA:
		return "Confirm two-factor setup", "Use this code to confirm enabling two-factor authentication:"
	case domain.OTPPurposeDisable2FA:
		return "Confirm disabling two-factor", "Use this code to confirm disabling two-factor authentication:"
	case domain.OTPPurposePasswordReset:
		return "Reset your ClickTales password", "Use this code to reset your password:"
	default:
		return "Your ClickTales verification code", "Your verification code:"
	}
}
