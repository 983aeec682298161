package session

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/HouseOfSounds/VitaeEMR/internal/records"
)

var ErrInvalidAssertion = errors.New("invalid identity assertion")

// IdentityClaims is the payload the identity provider signs at login.
type IdentityClaims struct {
	Email           string `json:"email,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 login assertions from the identity provider.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier creates a verifier. An empty issuer accepts any iss claim.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses the assertion and returns the profile to upsert.
func (v *Verifier) Verify(assertion string) (records.UserProfile, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(assertion, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return records.UserProfile{}, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return records.UserProfile{}, ErrInvalidAssertion
	}
	if claims.Subject == "" {
		return records.UserProfile{}, fmt.Errorf("%w: missing sub", ErrInvalidAssertion)
	}

	return records.UserProfile{
		ID:              claims.Subject,
		Email:           optional(claims.Email),
		FirstName:       optional(claims.FirstName),
		LastName:        optional(claims.LastName),
		ProfileImageURL: optional(claims.ProfileImageURL),
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
