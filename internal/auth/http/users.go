package http

import (
	"net/http"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
	"github.com/monuwu/ClickTales-sub001/internal/auth/service"
	"github.com/monuwu/ClickTales-sub001/pkg/apix"
	"github.com/monuwu/ClickTales-sub001/pkg/httpx"
)

// UsersHandler serves user lookups: the public profile endpoint and the
// admin listing.
type UsersHandler struct {
	Users *service.UserService
}

// HandleGetByUsername godoc
//
//	@Summary		Look up a user by username
//	@Description	Anonymous callers get the public view. The account owner and admins get the full record.
//	@Tags			Users
//	@Produce		json
//	@Param			username	path		string	true	"username"
//	@Success		200			{object}	apix.PublicUserResponse
//	@Failure		404			{object}	apix.APIError
//	@Router			/v1/users/{username} [get].
func (h *UsersHandler) HandleGetByUsername(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	user, err := h.Users.GetUserByUsername(r.Context(), username)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	// Optional authn: a valid token may widen the view.
	callerID := httpx.UserIDFromContext(r.Context())
	callerRole := httpx.RoleFromContext(r.Context())
	if callerID == user.ID || callerRole == string(domain.RoleAdmin) {
		httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toPublicUserResponse(user))
}

// HandleAdminList godoc
//
//	@Summary		List all users
//	@Description	Admin only.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		apix.UserResponse
//	@Failure		401	{object}	apix.APIError
//	@Failure		403	{object}	apix.APIError	"caller is not an admin"
//	@Router			/v1/admin/users [get].
func (h *UsersHandler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	out := make([]apix.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}
