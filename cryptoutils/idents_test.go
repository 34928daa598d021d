package cryptoutils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstanceID(t *testing.T) {
	id, err := NewInstanceID()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "id-"), "Instance id should carry the id- prefix")
	assert.Len(t, id, len("id-")+16, "Instance id should encode 8 random bytes")

	id2, err := NewInstanceID()
	require.NoError(t, err)
	assert.NotEqual(t, id, id2, "Instance ids should be unique")
}

func TestNewOrderID(t *testing.T) {
	id, err := NewOrderID()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(id, "ORD-"), "Order id should carry the ORD- prefix")
	assert.Len(t, id, len("ORD-")+12, "Order id should encode 6 random bytes")
	assert.Equal(t, strings.ToUpper(id), id, "Order id should be uppercase")
}

func TestNewBearerToken(t *testing.T) {
	token, err := NewBearerToken()
	require.NoError(t, err)
	assert.Len(t, token, 64, "Token should be 32 bytes hex encoded")

	token2, err := NewBearerToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, token2, "Tokens should be unique")
}

func TestNewCredentialPair(t *testing.T) {
	apiKey, appKey, err := NewCredentialPair()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(apiKey, "dd_api_"))
	assert.True(t, strings.HasPrefix(appKey, "dd_app_"))
	assert.NotEqual(t, apiKey[len("dd_api_"):], appKey[len("dd_app_"):], "Key material should differ")
}

func TestTokenEqual(t *testing.T) {
	token, err := NewBearerToken()
	require.NoError(t, err)

	assert.True(t, TokenEqual(token, token))
	assert.False(t, TokenEqual(token, strings.ToUpper(token)), "Comparison should be case sensitive")
	assert.False(t, TokenEqual(token, token[:len(token)-1]))
	assert.False(t, TokenEqual(token, ""))
	assert.False(t, TokenEqual("", ""), "Empty tokens should never match")
}
