package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-finalization-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-finalization-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	companyIDKey contextKey = "company_id"
	userIDKey    contextKey = "user_id"
)

// RequireCompany rejects tokens without a company_id claim and stores the
// company and user ids on the request context.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.HandleError(w, jwt.ErrInvalidToken)
			return
		}

		companyID, ok := jwt.ClaimString(claims, "company_id")
		if !ok {
			response.HandleError(w, jwt.ErrMissingCompany)
			return
		}

		ctx := context.WithValue(r.Context(), companyIDKey, companyID)
		if userID, ok := jwt.ClaimString(claims, "user_id"); ok {
			ctx = context.WithValue(ctx, userIDKey, userID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func CompanyIDFromContext(ctx context.Context) string {
	companyID, _ := ctx.Value(companyIDKey).(string)
	return companyID
}

func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
