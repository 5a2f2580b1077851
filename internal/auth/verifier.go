// Package auth verifies access tokens issued by the external identity
// provider. The storefront never issues tokens; it only checks the provider's
// HMAC signature and expiry.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/BothSann/kdmv-sub002/pkg/middleware"
)

// Claims represents the access token claims the storefront consumes. The
// role claim distinguishes customers from back-office staff.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Role constants carried in the role claim.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

// Verifier validates provider-issued access tokens.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a verifier for tokens signed with the given shared
// secret. If issuer is non-empty, the token's iss claim must match.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Verify parses and validates an access token, returning the claims the
// middleware needs. The subject claim carries the user ID.
func (v *Verifier) Verify(tokenString string) (*middleware.Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid access token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("access token missing subject")
	}

	role := claims.Role
	if role == "" {
		role = RoleCustomer
	}

	return &middleware.Claims{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   role,
	}, nil
}
