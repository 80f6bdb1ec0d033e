package http

import (
	"net/http"

	"github.com/monuwu/ClickTales-sub001/internal/auth/service"
	"github.com/monuwu/ClickTales-sub001/pkg/apix"
	"github.com/monuwu/ClickTales-sub001/pkg/httpx"
)

// ProfileHandler serves the authenticated user's own account.
type ProfileHandler struct {
	Users       *service.UserService
	Credentials *service.CredentialService
}

// HandleGet godoc
//
//	@Summary		Get own profile
//	@Tags			Profile
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	apix.UserResponse
//	@Failure		401	{object}	apix.APIError
//	@Router			/v1/profile [get].
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		apix.ErrInvalidToken.WriteError(w)
		return
	}

	user, err := h.Users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdate godoc
//
//	@Summary		Update own profile
//	@Description	Updates display name and avatar. Omitted fields keep their current value.
//	@Tags			Profile
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		profileUpdateRequest	true	"fields to change"
//	@Success		200		{object}	apix.UserResponse
//	@Failure		400		{object}	apix.APIError
//	@Failure		401		{object}	apix.APIError
//	@Router			/v1/profile [patch].
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req profileUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		apix.ErrInvalidToken.WriteError(w)
		return
	}

	current, err := h.Users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	name := current.Name
	if req.Name != nil {
		name = *req.Name
	}
	avatar := current.Avatar
	if req.Avatar != nil {
		avatar = *req.Avatar
	}

	updated, err := h.Users.UpdateProfile(r.Context(), userID, name, avatar)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}

// HandlePasswordChange godoc
//
//	@Summary		Change password
//	@Description	Verifies the current password, stores the new hash, and revokes every active session.
//	@Tags			Profile
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		passwordChangeRequest	true	"current and new password"
//	@Success		200		{object}	apix.AckResponse
//	@Failure		400		{object}	apix.APIError
//	@Failure		401		{object}	apix.APIError	"wrong current password"
//	@Router			/v1/profile/password [post].
func (h *ProfileHandler) HandlePasswordChange(w http.ResponseWriter, r *http.Request) {
	var req passwordChangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := httpx.UserIDFromContext(r.Context())
	if userID == "" {
		apix.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.Credentials.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, apix.AckResponse{Message: "password changed, all sessions revoked"})
}
