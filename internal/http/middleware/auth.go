package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tangerinesoft/photo-service/internal/utils/jwt"
	"github.com/tangerinesoft/photo-service/internal/utils/response"
)

type contextKey string

const SubjectKey contextKey = "subject"

// AuthMiddleware requires a bearer token signed with jwtSecret whose subject
// is the admin username.
func AuthMiddleware(jwtSecret, adminUsername string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, errors.New("authorization header required"))
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				unauthorized(w, errors.New("invalid authorization header format"))
				return
			}

			subject, err := jwt.ExtractSubjectFromToken(strings.TrimSpace(token), jwtSecret)
			if err != nil || subject != adminUsername {
				unauthorized(w, errors.New("could not validate credentials"))
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(err))
}

// GetSubjectFromContext returns the authenticated admin username.
func GetSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok
}
