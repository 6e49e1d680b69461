package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/portfolio-site/backend/auth"
	"github.com/portfolio-site/backend/errs"
)

type adminHandler struct {
	responder     Responder
	logger        zerolog.Logger
	authenticator auth.Authenticator
	tokens        *auth.TokenIssuer
}

func newAdminHandler(authenticator auth.Authenticator, tokens *auth.TokenIssuer) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		authenticator: authenticator,
		tokens:        tokens,
	}
}

// login exchanges admin credentials for a session token
// @Summary Admin login
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Admin credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /admin/login [post]
func (h adminHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.tokens == nil {
			h.responder.WriteError(w, errs.NewNotFoundError("admin sessions are disabled"))
			return
		}

		var req LoginRequest
		if err := decodeJSON(r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.Username) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("username"))
			return
		}
		if req.Password == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("password"))
			return
		}

		if err := h.authenticator.Authenticate(r.Context(), req.Username, req.Password); err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				h.logger.Warn().Str("username", req.Username).Msg("Failed admin login")
				h.responder.WriteError(w, errs.NewInvalidCredentialsError())
				return
			}
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("credential lookup failed", err))
			return
		}

		token, expiresAt, err := h.tokens.Issue(req.Username)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("issue admin token", err))
			return
		}

		h.logger.Info().Str("username", req.Username).Msg("Admin logged in")
		h.responder.WriteJSON(w, LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		})
	}
}
