package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "student-progress-dashboard/app/models/postgresql"
)

func TestTokens(t *testing.T) {
	t.Setenv("JWT_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	user := &models.User{ID: uuid.New(), Username: "admin", Role: "admin"}

	t.Run("Success: access token round trip", func(t *testing.T) {
		tok, err := GenerateToken(user)
		require.NoError(t, err)

		claims, err := ValidateToken(tok)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, "admin", claims.RoleName)
	})

	t.Run("Error: refresh token is not an access token", func(t *testing.T) {
		tok, err := GenerateRefreshToken(user)
		require.NoError(t, err)

		_, err = ValidateToken(tok)
		assert.Error(t, err)

		claims, err := ValidateRefreshToken(tok)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
	})

	t.Run("Error: garbage", func(t *testing.T) {
		_, err := ValidateToken("not-a-token")
		assert.Error(t, err)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(models.LoginRequest{Username: "admin", Password: "123"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")

	assert.NoError(t, ValidateStruct(models.LoginRequest{Username: "admin", Password: "123456"}))
}
