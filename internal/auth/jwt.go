package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/repotrack/backend/internal/roles"
)

// accessTokenExpiry is how long a console bearer token lives. The Redis
// mirror lets logout revoke it earlier.
const accessTokenExpiry = 24 * time.Hour

// Claims are the bearer-token claims: user identity plus role, so role
// gating does not need a user lookup on every request.
type Claims struct {
	UserID uuid.UUID  `json:"sub"`
	Role   roles.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies console bearer tokens.
type JWTService struct {
	secret []byte
}

func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret)}
}

// SignAccessToken creates a bearer token for an authenticated user. The
// token id (jti) keys the Redis session mirror.
func (s *JWTService) SignAccessToken(userID uuid.UUID, role roles.Role) (token string, tokenID string, err error) {
	now := time.Now()
	tokenID = uuid.NewString()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenExpiry)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = t.SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, tokenID, nil
}

// VerifyToken verifies and parses a bearer token.
func (s *JWTService) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if !roles.Valid(claims.Role) {
		return nil, fmt.Errorf("invalid role in token")
	}

	return claims, nil
}
