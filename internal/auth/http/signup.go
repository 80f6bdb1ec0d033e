package http

import (
	"net/http"

	"github.com/monuwu/ClickTales-sub001/internal/auth/service"
	"github.com/monuwu/ClickTales-sub001/pkg/apix"
	"github.com/monuwu/ClickTales-sub001/pkg/httpx"
)

// SignupHandler drives the email-verified registration flow.
type SignupHandler struct {
	Signup *service.SignupService
}

// HandleRequest godoc
//
//	@Summary		Start email-verified signup
//	@Description	Creates an unverified account and emails a 6-digit code. No tokens are issued until the code is verified.
//	@Tags			Signup
//	@Accept			json
//	@Produce		json
//	@Param			body	body		signupRequest	true	"signup payload"
//	@Success		201		{object}	apix.SignupPendingResponse
//	@Failure		400		{object}	apix.APIError	"validation failed"
//	@Failure		409		{object}	apix.APIError	"email or username taken"
//	@Router			/v1/auth/signup/request [post].
func (h *SignupHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pending, err := h.Signup.RequestSignupOTP(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, apix.SignupPendingResponse{
		UserID: pending.UserID,
		Email:  pending.Email,
	})
}

// HandleVerify godoc
//
//	@Summary		Verify the signup code
//	@Description	Consumes the emailed SIGNUP code. Success activates the account and returns the first token pair.
//	@Tags			Signup
//	@Accept			json
//	@Produce		json
//	@Param			body	body		signupVerifyRequest	true	"user id and code"
//	@Success		200		{object}	apix.AuthResponse
//	@Failure		400		{object}	apix.APIError	"invalid or expired code"
//	@Failure		404		{object}	apix.APIError	"unknown user"
//	@Router			/v1/auth/signup/verify [post].
func (h *SignupHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req signupVerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, user, err := h.Signup.VerifySignupOTP(r.Context(), req.UserID, req.Code)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toAuthResponse(pair, user))
}
