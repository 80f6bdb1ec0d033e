package http

import (
	"net/http"

	"github.com/monuwu/ClickTales-sub001/internal/auth/service"
	"github.com/monuwu/ClickTales-sub001/pkg/apix"
	"github.com/monuwu/ClickTales-sub001/pkg/httpx"
)

// TwoFactorHandler exposes the step-up login and the OTP-gated 2FA toggles.
type TwoFactorHandler struct {
	TwoFactor *service.TwoFactorService
}

// HandleLoginOTP godoc
//
//	@Summary		Step-up login
//	@Description	Logs in with password plus, for two-factor accounts, a LOGIN code. With a correct password and no code the
//	@Description	response is HTTP 200 with success=false and requires_otp=true - a signal to request a code and retry, not an error.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginOTPRequest	true	"credentials and optional code"
//	@Success		200		{object}	apix.LoginOTPResponse
//	@Failure		400		{object}	apix.APIError	"invalid or expired code"
//	@Failure		401		{object}	apix.APIError	"invalid credentials"
//	@Router			/v1/auth/login/otp [post].
func (h *TwoFactorHandler) HandleLoginOTP(w http.ResponseWriter, r *http.Request) {
	var req loginOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.TwoFactor.LoginWithOTP(r.Context(), req.Email, req.Password, req.Code)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)

	if result.RequiresOTP {
		httpx.WriteJSON(w, http.StatusOK, apix.LoginOTPResponse{
			Success:     false,
			RequiresOTP: true,
			Message:     "a one-time code is required to complete this login",
		})
		return
	}

	auth := toAuthResponse(result.Tokens, result.User)
	httpx.WriteJSON(w, http.StatusOK, apix.LoginOTPResponse{
		Success: true,
		Auth:    &auth,
	})
}

// HandleEnable godoc
//
//	@Summary		Enable two-factor authentication
//	@Description	Verifies a previously requested ENABLE_2FA code, then returns the TOTP secret and backup codes. Shown exactly once.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		twoFactorRequest	true	"the emailed code"
//	@Success		200		{object}	apix.TwoFactorEnableResponse
//	@Failure		400		{object}	apix.APIError	"invalid or expired code"
//	@Failure		401		{object}	apix.APIError
//	@Failure		409		{object}	apix.APIError	"already enabled"
//	@Router			/v1/auth/2fa/enable [post].
func (h *TwoFactorHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	var req twoFactorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		apix.ErrInvalidToken.WriteError(w)
		return
	}

	prov, err := h.TwoFactor.Enable(r.Context(), userID, req.Code)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, apix.TwoFactorEnableResponse{
		Enabled:     true,
		Secret:      prov.Secret,
		OTPAuthURL:  prov.OTPAuthURL,
		BackupCodes: prov.BackupCodes,
	})
}

// HandleDisable godoc
//
//	@Summary		Disable two-factor authentication
//	@Description	Verifies a DISABLE_2FA code, then clears the flag and all stored secret material.
//	@Tags			TwoFactor
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		twoFactorRequest	true	"the emailed code"
//	@Success		200		{object}	apix.AckResponse
//	@Failure		400		{object}	apix.APIError	"invalid or expired code"
//	@Failure		401		{object}	apix.APIError
//	@Failure		409		{object}	apix.APIError	"not enabled"
//	@Router			/v1/auth/2fa/disable [post].
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	var req twoFactorRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		apix.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.TwoFactor.Disable(r.Context(), userID, req.Code); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, apix.AckResponse{Message: "two-factor disabled"})
}
