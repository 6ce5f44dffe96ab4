package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaker_GenerateAndParseToken(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewMaker(secretKey, 15*time.Minute)

	tests := []struct {
		name      string
		sessionID string
	}{
		{name: "uuid сессии", sessionID: "0f6c5741-6cb6-4f62-8fa2-6bb3c0c7f6ac"},
		{name: "короткий идентификатор", sessionID: "s1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.sessionID)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.sessionID, claims.SessionID)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Minute)
		})
	}
}

func TestMaker_ParseToken_WrongKey(t *testing.T) {
	maker := NewMaker("key-one", time.Minute)
	other := NewMaker("key-two", time.Minute)

	token, err := maker.GenerateToken("sid")
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestMaker_ParseToken_Expired(t *testing.T) {
	maker := NewMaker("key", -time.Minute)

	token, err := maker.GenerateToken("sid")
	require.NoError(t, err)

	_, err = maker.ParseToken(token)
	assert.Error(t, err)
}

func TestMaker_ParseToken_Garbage(t *testing.T) {
	maker := NewMaker("key", time.Minute)

	_, err := maker.ParseToken("not-a-token")
	assert.Error(t, err)
}
