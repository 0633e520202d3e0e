package secretary

import (
	"testing"

	"github.com/danilovkiri/dk-go-offlineq/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecretaryServiceEmptyKey(t *testing.T) {
	_, err := NewSecretaryService(&config.SecretConfig{})
	assert.Error(t, err)
	_, err = NewSecretaryService(nil)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	sec, err := NewSecretaryService(&config.SecretConfig{SecretKey: "jds__63h3_7ds"})
	require.NoError(t, err)
	accessToken, clientID, err := sec.NewToken()
	require.NoError(t, err)
	assert.NotEmpty(t, accessToken)
	assert.NotEmpty(t, clientID)
	parsedID, err := sec.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, clientID, parsedID)
}

func TestValidateTokenGarbage(t *testing.T) {
	sec, err := NewSecretaryService(&config.SecretConfig{SecretKey: "jds__63h3_7ds"})
	require.NoError(t, err)
	_, err = sec.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestValidateTokenWrongKey(t *testing.T) {
	issuer, err := NewSecretaryService(&config.SecretConfig{SecretKey: "one-key"})
	require.NoError(t, err)
	verifier, err := NewSecretaryService(&config.SecretConfig{SecretKey: "another-key"})
	require.NoError(t, err)
	accessToken, _, err := issuer.NewToken()
	require.NoError(t, err)
	_, err = verifier.ValidateToken(accessToken)
	assert.Error(t, err)
}
