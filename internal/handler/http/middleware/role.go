package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hris-finalization-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// RequireRole admits tokens whose role claim is one of roles.
func RequireRole(roles ...jwt.Role) func(http.Handler) http.Handler {
	allowed := make(map[jwt.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, jwt.ErrInsufficientRole)
				return
			}

			roleStr, ok := claims["role"].(string)
			if !ok || !allowed[jwt.Role(roleStr)] {
				response.HandleError(w, jwt.ErrInsufficientRole)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireFinalizer admits the roles allowed to finalize a period.
func RequireFinalizer(next http.Handler) http.Handler {
	return RequireRole(jwt.RoleOwner, jwt.RoleManager, jwt.RoleTimekeeper)(next)
}
