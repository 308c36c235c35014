package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"salemre/backend/internal/models"
)

const issuer = "salemre-api"

var errNoUser = errors.New("token carries no user id")

// Claims is the session token payload.
type Claims struct {
	UserID int64           `json:"uid"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// GenerateJWT signs an HS256 session token for the user, valid for ttl.
func GenerateJWT(userID int64, role models.UserRole, secretKey string, ttl time.Duration) (string, error) {
	issued := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
		},
	}).SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// ValidateJWT parses a session token. Only HS256 tokens from this issuer with
// an expiry are accepted.
func ValidateJWT(tokenString string, secretKey string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	}); err != nil {
		return nil, fmt.Errorf("invalid JWT: %w", err)
	}
	if claims.UserID <= 0 {
		return nil, errNoUser
	}
	return claims, nil
}
