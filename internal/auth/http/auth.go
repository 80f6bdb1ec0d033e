package http

import (
	"net/http"

	"github.com/monuwu/ClickTales-sub001/internal/auth/service"
	"github.com/monuwu/ClickTales-sub001/pkg/apix"
	"github.com/monuwu/ClickTales-sub001/pkg/httpx"
)

// AuthHandler covers direct credential endpoints: register, login, refresh
// and logout. The OTP-gated variants live in SignupHandler and
// TwoFactorHandler.
type AuthHandler struct {
	Credentials *service.CredentialService
	Tokens      *service.TokenService
}

// HandleRegister godoc
//
//	@Summary		Register a new account
//	@Description	Creates an active user and returns a token pair. Use the signup/request flow instead when email verification is wanted.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		registerRequest	true	"registration payload"
//	@Success		201		{object}	apix.AuthResponse
//	@Failure		400		{object}	apix.APIError	"validation failed"
//	@Failure		409		{object}	apix.APIError	"email or username taken"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, user, err := h.Credentials.Register(r.Context(), req.Email, req.Username, req.Name, req.Password)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, toAuthResponse(pair, user))
}

// HandleLogin godoc
//
//	@Summary		Log in with email and password
//	@Description	Returns a token pair. Accounts with two-factor enabled should use /v1/auth/login/otp.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		loginRequest	true	"credentials"
//	@Success		200		{object}	apix.AuthResponse
//	@Failure		401		{object}	apix.APIError	"invalid credentials"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, user, err := h.Credentials.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toAuthResponse(pair, user))
}

// HandleRefresh godoc
//
//	@Summary		Rotate a refresh token
//	@Description	Exchanges a valid refresh token for a new pair. The presented token is revoked; replaying it fails.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		refreshRequest	true	"refresh token"
//	@Success		200		{object}	apix.AuthResponse
//	@Failure		401		{object}	apix.APIError	"unknown, expired or revoked token"
//	@Router			/v1/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, user, err := h.Tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toAuthResponse(pair, user))
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Revokes the presented refresh token, or every session of the caller when everywhere is set.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		logoutRequest	true	"logout options"
//	@Success		200		{object}	apix.AckResponse
//	@Failure		401		{object}	apix.APIError
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		apix.ErrInvalidToken.WriteError(w)
		return
	}

	if req.Everywhere {
		if err := h.Tokens.RevokeAllForUser(r.Context(), userID); err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}
	} else {
		if req.RefreshToken == "" {
			apix.NewValidationError(map[string]string{
				"refresh_token": "required unless everywhere is set",
			}).WriteError(w)
			return
		}
		if err := h.Tokens.Revoke(r.Context(), req.RefreshToken); err != nil {
			writeServiceError(r.Context(), w, err)
			return
		}
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, apix.AckResponse{Message: "logged out"})
}
