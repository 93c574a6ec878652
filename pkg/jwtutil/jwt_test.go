package jwtutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loyalty-platform/pkg/config"
)

func TestGenerateAndValidateRoundtrip(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := GenerateToken("owner@beanthere.example", 42, RoleBusiness)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "owner@beanthere.example", claims.Email)
	assert.Equal(t, uint(42), claims.ActorID)
	assert.Equal(t, RoleBusiness, claims.Role)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "key-one", ExpirationHours: 1})
	token, err := GenerateToken("user@example.com", 7, RoleUser)
	require.NoError(t, err)

	Initialize(&config.JWTConfig{SigningKey: "key-two", ExpirationHours: 1})
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: -1})
	token, err := GenerateToken("user@example.com", 7, RoleUser)
	require.NoError(t, err)

	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestUninitializedConfig(t *testing.T) {
	Initialize(nil)
	defer Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	_, err := GenerateToken("user@example.com", 7, RoleUser)
	assert.Error(t, err)
	_, err = ValidateToken("whatever")
	assert.Error(t, err)
}
