package auth

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/studyhub/studyhub-api/internal/models"
)

// Verifier verifies bearer tokens signed with a shared HMAC secret and
// extracts the identity claims the API keys users by.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a new token verifier. Issuer is optional; when empty
// the iss claim is not checked.
func NewVerifier(secret []byte, issuer string) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret cannot be empty")
	}
	return &Verifier{secret: secret, issuer: issuer}, nil
}

// Verify parses and verifies a token string and extracts its claims.
// Signature and exp/nbf validation happen inside jwt.Parse; a token without
// a subject is rejected because every resource row is keyed by it.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*models.TokenClaims, error) {
	opts := []jwt.ParseOption{
		jwt.WithKey(jwa.HS256, v.secret),
		jwt.WithValidate(true),
		jwt.WithContext(ctx),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse/verify token: %w", err)
	}

	claims := &models.TokenClaims{
		Sub: token.Subject(),
		Iss: token.Issuer(),
	}
	if claims.Sub == "" {
		return nil, fmt.Errorf("token missing subject claim")
	}

	if email, ok := token.Get("email"); ok {
		if emailStr, ok := email.(string); ok {
			claims.Email = emailStr
		}
	}
	if name, ok := token.Get("name"); ok {
		if nameStr, ok := name.(string); ok {
			claims.Name = nameStr
		}
	}
	if !token.Expiration().IsZero() {
		claims.Exp = token.Expiration().Unix()
	}
	if !token.IssuedAt().IsZero() {
		claims.Iat = token.IssuedAt().Unix()
	}

	return claims, nil
}
