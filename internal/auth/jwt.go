package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the gateway session token payload. UpstreamToken carries
// the backend's own bearer token so every proxied request can present
// the caller's upstream identity without the gateway storing sessions.
type Claims struct {
	AdminID       string `json:"admin_id"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	UpstreamToken string `json:"upstream_token,omitempty"`
	jwt.RegisteredClaims
}

func GenerateToken(secret, adminID, name, role, upstreamToken string) (string, error) {
	claims := Claims{
		AdminID:       adminID,
		Name:          name,
		Role:          role,
		UpstreamToken: upstreamToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(8 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
