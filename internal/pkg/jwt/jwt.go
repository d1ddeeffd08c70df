package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Role string

const (
	RoleOwner      Role = "owner"
	RoleManager    Role = "manager"
	RoleTimekeeper Role = "timekeeper"
	RoleEmployee   Role = "employee"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrMissingCompany    = errors.New("token carries no company")
	ErrInsufficientRole  = errors.New("insufficient role for this operation")
	ErrInvalidExpiration = errors.New("invalid access token expiration")
)

type Service interface {
	GenerateAccessToken(userID string, companyID string, role Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken issues the token the finalization API expects: the
// company_id claim scopes every request, role gates the write endpoint.
func (j *JWTService) GenerateAccessToken(userID string, companyID string, role Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil || expDuration <= 0 {
		return "", 0, ErrInvalidExpiration
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":    userID,
		"company_id": companyID,
		"role":       string(role),
		"type":       "access",
		"exp":        expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ClaimString returns claims[key] when it is a non-empty string.
func ClaimString(claims map[string]interface{}, key string) (string, bool) {
	v, ok := claims[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
