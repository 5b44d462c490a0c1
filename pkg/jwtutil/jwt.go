package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Lamb-Project/lamb-sub000/pkg/config"
)

var (
	secret     = []byte("lamb-secret-key")
	expiration = 24 * time.Hour
)

// Initialize configures the signing key and token lifetime from config.
func Initialize(cfg *config.JWTConfig) {
	secret = []byte(cfg.SigningKey)
	if cfg.ExpirationHours > 0 {
		expiration = time.Duration(cfg.ExpirationHours) * time.Hour
	}
}

// UserClaims represents the JWT claims for an authenticated platform user.
type UserClaims struct {
	Email          string `json:"email"`
	UserID         uint   `json:"user_id"`
	OrganizationID uint   `json:"organization_id,omitempty"`
	Role           string `json:"role,omitempty"` // role within the organization
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a user within an organization.
func GenerateToken(email string, userID, organizationID uint, role string) (string, error) {
	claims := UserClaims{
		Email:          email,
		UserID:         userID,
		OrganizationID: organizationID,
		Role:           role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates and parses a JWT.
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
