package auth

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	id "volunteerhub/pkg/domain"
	dErrors "volunteerhub/pkg/domain-errors"
	"volunteerhub/pkg/platform/httputil"
	"volunteerhub/pkg/requestcontext"
)

// ActorValidator resolves a bearer token into the caller identity.
type ActorValidator interface {
	ValidateToken(tokenString string) (id.Actor, error)
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// resolved Actor in the request context.
func RequireAuth(validator ActorValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := bearerToken(r)
			if token == "" {
				logger.WarnContext(ctx, "rejecting request without bearer token",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			actor, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "rejecting request with invalid token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}

// RequireRole lets through only actors holding one of roles. Mount it inside
// RequireAuth.
func RequireRole(logger *slog.Logger, roles ...id.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			actor := requestcontext.Actor(ctx)
			if actor.IsAuthenticated() && slices.Contains(roles, actor.Role) {
				next.ServeHTTP(w, r)
				return
			}
			logger.WarnContext(ctx, "role not permitted on route",
				"request_id", requestcontext.RequestID(ctx),
				"user_id", actor.UserID,
				"role", actor.Role,
				"path", r.URL.Path,
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "role not permitted"))
		})
	}
}
