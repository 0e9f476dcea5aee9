package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/YelzhanWeb/dinehub/internal/adapter/auth"
	"github.com/YelzhanWeb/dinehub/internal/adapter/logger"
	"github.com/YelzhanWeb/dinehub/internal/domain"
	"github.com/YelzhanWeb/dinehub/internal/interfaces"
)

const (
	HeaderSessionID = "X-Session-ID"
	HeaderRequestID = "X-Request-ID"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	sessionKey
)

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func sessionFrom(ctx context.Context) *domain.Session {
	sess, _ := ctx.Value(sessionKey).(*domain.Session)
	return sess
}

// RequestIDMiddleware reuses an incoming X-Request-ID or makes a new one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = "req-" + uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func LoggingMiddleware(logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := RequestIDFrom(r.Context())

			logger.Debug("http_request", fmt.Sprintf("%s %s", r.Method, r.URL.Path), requestID, map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Debug("http_response", "Request completed", requestID, map[string]any{
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

func RecoveryMiddleware(logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic_recovered", "Panic recovered", RequestIDFrom(r.Context()), nil, fmt.Errorf("%v", err))
					respondError(w, "Internal server error", http.StatusInternalServerError, nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// clientSessionPrefix marks session ids derived from a token subject.
const clientSessionPrefix = "client:"

// SessionMiddleware binds every request to a session. The session id comes
// from X-Session-ID, or from the token subject, or is minted for a new
// guest and echoed back. A valid bearer token logs the client in and the
// session becomes theirs; a request without one is a guest and cannot
// reach a session owned by a client.
func SessionMiddleware(sessions interfaces.SessionStore, tokens *auth.Tokens, logger logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := RequestIDFrom(ctx)

			var claims *auth.Claims
			if raw, ok := bearerToken(r); ok {
				c, err := tokens.Parse(raw)
				if err != nil {
					logger.Warn("auth_failed", "Rejected bearer token", requestID, map[string]any{"error": err.Error()})
					respondError(w, "Invalid or expired token", http.StatusUnauthorized, nil)
					return
				}
				claims = c
			}

			sessionID := r.Header.Get(HeaderSessionID)
			switch {
			case sessionID == "" && claims != nil:
				sessionID = clientSessionPrefix + claims.Subject
			case sessionID == "":
				sessionID = uuid.NewString()
			}

			// ids of the form client:<sub> belong to that subject only
			if strings.HasPrefix(sessionID, clientSessionPrefix) &&
				(claims == nil || sessionID != clientSessionPrefix+claims.Subject) {
				logger.Warn("session_refused", "Session id belongs to another client", requestID, nil)
				respondError(w, "Session belongs to another client", http.StatusForbidden, nil)
				return
			}

			err := sessions.Update(ctx, sessionID, func(s *domain.Session) error {
				if claims == nil {
					return s.BindGuest()
				}
				return s.BindClient(claims.Subject, claims.Name, claims.Role)
			})
			if errors.Is(err, domain.ErrForbidden) {
				logger.Warn("session_refused", "Session is owned by another client", requestID, nil)
				respondError(w, "Session belongs to another client", http.StatusForbidden, nil)
				return
			}
			if err != nil {
				logger.Error("session_failed", "Failed to bind session", requestID, nil, err)
				respondError(w, "Internal server error", http.StatusInternalServerError, nil)
				return
			}
			w.Header().Set(HeaderSessionID, sessionID)

			sess, err := sessions.Get(ctx, sessionID)
			if err != nil {
				logger.Error("session_failed", "Failed to load session", requestID, nil, err)
				respondError(w, "Internal server error", http.StatusInternalServerError, nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, sessionKey, sess)))
		})
	}
}

// bearerToken returns the token of a "Bearer" Authorization header. Other
// schemes are treated as no token at all.
func bearerToken(r *http.Request) (string, bool) {
	const prefix = "bearer "
	h := r.Header.Get("Authorization")
	if len(h) < len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
