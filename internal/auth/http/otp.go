package http

import (
	"net/http"
	"strings"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
	"github.com/monuwu/ClickTales-sub001/internal/auth/service"
	"github.com/monuwu/ClickTales-sub001/pkg/apix"
	"github.com/monuwu/ClickTales-sub001/pkg/httpx"
)

// OTPHandler is the generic request/verify surface for LOGIN, ENABLE_2FA,
// DISABLE_2FA and PASSWORD_RESET codes. SIGNUP codes are only issued through
// the signup flow.
type OTPHandler struct {
	OTPs  *service.OTPService
	Users *service.UserService
}

func parsePurpose(w http.ResponseWriter, raw string) (domain.OTPPurpose, bool) {
	purpose := domain.OTPPurpose(strings.ToUpper(strings.TrimSpace(raw)))
	if !purpose.Valid() || purpose == domain.OTPPurposeSignup {
		apix.NewValidationError(map[string]string{
			"purpose": "must be one of LOGIN, ENABLE_2FA, DISABLE_2FA, PASSWORD_RESET",
		}).WriteError(w)
		return "", false
	}
	return purpose, true
}

// HandleRequest godoc
//
//	@Summary		Request a one-time code
//	@Description	Emails a 6-digit code for the given purpose. A new request supersedes any unused code of the same purpose.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			body	body		otpRequestRequest	true	"email and purpose"
//	@Success		200		{object}	apix.AckResponse
//	@Failure		400		{object}	apix.APIError	"unknown purpose"
//	@Failure		404		{object}	apix.APIError	"no account with this email"
//	@Router			/v1/auth/otp/request [post].
func (h *OTPHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	var req otpRequestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	purpose, ok := parsePurpose(w, req.Purpose)
	if !ok {
		return
	}

	if err := h.OTPs.Request(r.Context(), req.Email, purpose); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, apix.AckResponse{Message: "code sent"})
}

// HandleVerify godoc
//
//	@Summary		Verify a one-time code
//	@Description	Checks a code without any side effect beyond consuming it. A matching code is single-use even when expired.
//	@Tags			OTP
//	@Accept			json
//	@Produce		json
//	@Param			body	body		otpVerifyRequest	true	"email, code and purpose"
//	@Success		200		{object}	apix.AckResponse
//	@Failure		400		{object}	apix.APIError	"invalid or expired code"
//	@Failure		404		{object}	apix.APIError	"no account with this email"
//	@Router			/v1/auth/otp/verify [post].
func (h *OTPHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	purpose, ok := parsePurpose(w, req.Purpose)
	if !ok {
		return
	}

	user, err := h.Users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	result, err := h.OTPs.Verify(r.Context(), user.ID, req.Code, purpose)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	if !result.Valid {
		apix.NewOTPError(result.Reason).WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, apix.AckResponse{Message: "code verified"})
}
