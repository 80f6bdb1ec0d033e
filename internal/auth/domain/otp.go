package domain

import "time"

// OTPPurpose discriminates the five workflows a one-time code can belong to.
// Each purpose has its own supersession bucket: creating a code for a
// (user, purpose) pair invalidates any unused code in the same bucket.
type OTPPurpose string

const (
	OTPPurposeSignup        OTPPurpose = "SIGNUP"
	OTPPurposeLogin         OTPPurpose = "LOGIN"
	OTPPurposeEnable2FA     OTPPurpose = "ENABLE_2FA"
	OTPPurposeDisable2FA    OTPPurpose = "DISABLE_2FA"
	OTPPurposePasswordReset OTPPurpose = "PASSWORD_RESET"
)

// Valid reports whether p is one of the known purposes.
func (p OTPPurpose) Valid() bool {
	switch p {
	case OTPPurposeSignup, OTPPurposeLogin, OTPPurposeEnable2FA,
		OTPPurposeDisable2FA, OTPPurposePasswordReset:
		return true
	}
	return false
}

// OTPRecord is a stored one-time code. At most one unused record exists per
// (UserID, Purpose) pair at any time; every verification attempt against a
// matching record consumes it.
type OTPRecord struct {
	ID        string
	UserID    string
	Code      string // 6 ASCII digits
	Purpose   OTPPurpose
	ExpiresAt time.Time // creation + 10 minutes
	Used      bool
	CreatedAt time.Time
}

// OTPResult is the outcome of a verification attempt. A wrong or expired code
// is an expected, frequent outcome, so it is reported as a value rather than
// an error.
type OTPResult struct {
	Valid  bool
	Reason string // set when Valid is false
}

const (
	OTPReasonInvalid = "Invalid OTP code"
	OTPReasonExpired = "OTP code has expired"
)
