package api

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/portfolio-site/backend/auth"
	"github.com/portfolio-site/backend/errs"
)

type authMiddleware struct {
	responder     Responder
	logger        zerolog.Logger
	authenticator auth.Authenticator
	tokens        *auth.TokenIssuer
}

func newAuthMiddleware(authenticator auth.Authenticator, tokens *auth.TokenIssuer) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	return authMiddleware{
		responder:     NewResponder(logger),
		logger:        logger,
		authenticator: authenticator,
		tokens:        tokens,
	}
}

// authenticate admits requests carrying either Basic admin credentials or a
// Bearer token issued by /admin/login.
func (m authMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			m.responder.WriteError(w, errs.NewMissingCredentialsError())
			return
		}

		scheme, credentials, _ := strings.Cut(authHeader, " ")
		var username string
		switch {
		case strings.EqualFold(scheme, "Basic"):
			user, password, ok := r.BasicAuth()
			if !ok {
				m.responder.WriteError(w, errs.NewInvalidCredentialsError())
				return
			}
			if err := m.authenticator.Authenticate(r.Context(), user, password); err != nil {
				if errors.Is(err, auth.ErrInvalidCredentials) {
					m.logger.Warn().Str("username", user).Msg("Rejected admin credentials")
					m.responder.WriteError(w, errs.NewInvalidCredentialsError())
					return
				}
				m.responder.WriteError(w, errs.NewInternalErrorWithCause("credential lookup failed", err))
				return
			}
			username = user

		case strings.EqualFold(scheme, "Bearer") && m.tokens != nil:
			subject, err := m.tokens.Verify(strings.TrimSpace(credentials))
			if err != nil {
				m.responder.WriteError(w, errs.NewInvalidTokenError())
				return
			}
			username = subject

		default:
			m.responder.WriteError(w, errs.NewUnauthorizedError("unsupported authorization scheme"))
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxWithAdmin(r.Context(), username)))
	})
}

// limitBody caps every request body at maxBytes; reads past it fail with
// *http.MaxBytesError, which handlers turn into 413.
func limitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				NewResponder(log.Logger).WriteError(w, errs.NewMaxBodySizeExceededError(maxBytes))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("requestID", middleware.GetReqID(r.Context())).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				// Write 500 if nothing written yet
				if !srw.wroteHeader {
					srw.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(srw, r)

		if srw.status == http.StatusInternalServerError {
			log.Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("requestID", middleware.GetReqID(r.Context())).
				Msg("500 error response")
		}
	})
}

// ColoredHTTPLoggingMiddleware logs each request at a level picked from its
// status code. Colour comes from the console writer when LOG_FORMAT=console.
func ColoredHTTPLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(srw, r)

		duration := time.Since(start)

		var logEvent *zerolog.Event
		switch {
		case srw.status >= 500:
			logEvent = log.Error()
		case srw.status >= 400:
			logEvent = log.Warn()
		default:
			logEvent = log.Info()
		}

		logEvent.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", srw.status).
			Dur("duration", duration).
			Str("remote_addr", r.RemoteAddr).
			Str("requestID", middleware.GetReqID(r.Context())).
			Msg("HTTP Request")
	})
}
