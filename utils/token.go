package utils

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	models "student-progress-dashboard/app/models/postgresql"
)

const (
	tokenIssuer     = "student-progress-dashboard"
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// GenerateToken membuat access token untuk user.
func GenerateToken(user *models.User) (string, error) {
	claims := &models.JWTClaims{
		UserID:   user.ID,
		RoleName: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, hmacKey(os.Getenv("JWT_SECRET")))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GenerateRefreshToken membuat token berumur panjang yang hanya bisa ditukar
// dengan access token baru.
func GenerateRefreshToken(user *models.User) (string, error) {
	claims := &models.RefreshClaims{
		UserID: user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(refreshTokenTTL)),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(refreshSecret()))
}

func ValidateRefreshToken(tokenString string) (*models.RefreshClaims, error) {
	claims := &models.RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, hmacKey(refreshSecret()))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid refresh token")
	}
	return claims, nil
}

func refreshSecret() string {
	if s := os.Getenv("JWT_REFRESH_SECRET"); s != "" {
		return s
	}
	return os.Getenv("JWT_SECRET")
}

// hmacKey menolak token yang tidak ditandatangani dengan HMAC.
func hmacKey(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}
}
