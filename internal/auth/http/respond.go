package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/monuwu/ClickTales-sub001/internal/auth/domain"
	"github.com/monuwu/ClickTales-sub001/internal/auth/service"
	"github.com/monuwu/ClickTales-sub001/internal/auth/store"
	"github.com/monuwu/ClickTales-sub001/pkg/apix"
	"github.com/monuwu/ClickTales-sub001/pkg/slogx"
)

// writeServiceError maps service and store errors to the wire taxonomy.
// Anything unrecognized becomes a 500 with the detail kept server-side.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if rej, ok := service.IsOTPRejected(err); ok {
		apix.NewOTPError(rej.Reason).WriteError(w)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		apix.ErrUnauthorized.WriteError(w)
	case errors.Is(err, service.ErrInvalidRefresh):
		apix.ErrInvalidToken.WriteError(w)
	case errors.Is(err, store.ErrAlreadyExists):
		apix.ErrConflict.WriteError(w)
	case errors.Is(err, store.ErrNotFound):
		apix.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrAlreadyEnabled):
		apix.NewAPIError(http.StatusConflict, apix.ErrorCodeConflict, "two-factor authentication is already enabled").WriteError(w)
	case errors.Is(err, service.ErrNotEnabled):
		apix.NewAPIError(http.StatusConflict, apix.ErrorCodeConflict, "two-factor authentication is not enabled").WriteError(w)
	default:
		slogx.FromContext(ctx).Error("request failed", slog.Any("error", err))
		apix.ErrServerError.WriteError(w)
	}
}

func toUserResponse(u domain.User) apix.UserResponse {
	return apix.UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		Name:             u.Name,
		Avatar:           u.Avatar,
		Role:             string(u.Role),
		IsActive:         u.IsActive,
		TwoFactorEnabled: u.TwoFactorEnabled,
		LastLoginAt:      u.LastLoginAt,
		CreatedAt:        u.CreatedAt,
	}
}

func toPublicUserResponse(u domain.User) apix.PublicUserResponse {
	return apix.PublicUserResponse{
		Username:  u.Username,
		Name:      u.Name,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

func toAuthResponse(pair domain.TokenPair, u domain.User) apix.AuthResponse {
	return apix.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
		User:         toUserResponse(u),
	}
}
