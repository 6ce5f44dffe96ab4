package config

import (
	"bytes"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput перехватывает вывод log.Fatal
func captureOutput(f func()) (string, bool) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	oldFlags := log.Flags()
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(oldFlags)
	}()

	panicked := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicked = true
			}
		}()
		f()
	}()

	return buf.String(), panicked
}

func writeTempConfig(t *testing.T, content string) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, os.Remove(tmpFile.Name()))
	})

	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())

	originalPath := os.Getenv("CONFIG_PATH")
	t.Cleanup(func() {
		require.NoError(t, os.Setenv("CONFIG_PATH", originalPath))
	})
	require.NoError(t, os.Setenv("CONFIG_PATH", tmpFile.Name()))
}

func TestMustLoad_ValidConfig(t *testing.T) {
	configContent := `
env: test
redis_connection:
  addressredis: "localhost:6379"
  password: "redis_pass"
  user: "redis_user"
  db: 1
  max_retries: 3
  dial_timeout: 5s
  timeoutredis: 10s
http_server:
  addresshttp: ":8080"
  timeouthttp: 30s
  idle_timeout: 60s
session_token:
  jwt_secret_key: "test_secret_key"
  session_ttl: 24h
moodle:
  base_url: "https://aula.example.edu/webservice/rest/server.php"
  token: "moodle_token"
  timeout: 20s
  fanout_limit: 4
wordpress:
  base_url: "https://example.com/wp-json/redcoes/v1"
  verify_timeout: 5s
  timeout: 15s
cache:
  dataset_ttl: 1h
`
	writeTempConfig(t, configContent)

	output, panicked := captureOutput(func() {
		cfg := MustLoad()

		assert.Equal(t, "test", cfg.Env)
		assert.Equal(t, "localhost:6379", cfg.AddressRedis)
		assert.Equal(t, "redis_pass", cfg.RedisConnection.Password)
		assert.Equal(t, "redis_user", cfg.User)
		assert.Equal(t, 1, cfg.DB)
		assert.Equal(t, 3, cfg.MaxRetries)
		assert.Equal(t, 5*time.Second, cfg.DialTimeout)
		assert.Equal(t, 10*time.Second, cfg.TimeoutRedis)
		assert.Equal(t, ":8080", cfg.AddressHTTP)
		assert.Equal(t, 30*time.Second, cfg.TimeoutHTTP)
		assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
		assert.Equal(t, "test_secret_key", cfg.JWTSecretKey)
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
		assert.Equal(t, "https://aula.example.edu/webservice/rest/server.php", cfg.Moodle.BaseURL)
		assert.Equal(t, "moodle_token", cfg.Token)
		assert.Equal(t, 20*time.Second, cfg.Moodle.Timeout)
		assert.Equal(t, 4, cfg.FanoutLimit)
		assert.Equal(t, "https://example.com/wp-json/redcoes/v1", cfg.Wordpress.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.VerifyTimeout)
		assert.Equal(t, 15*time.Second, cfg.Wordpress.Timeout)
		assert.Equal(t, time.Hour, cfg.DatasetTTL)
	})

	assert.Empty(t, output)
	assert.False(t, panicked)
}

func TestConfig_DefaultValues(t *testing.T) {
	configContent := `
env: test
moodle:
  base_url: "https://aula.example.edu/webservice/rest/server.php"
  token: "moodle_token"
wordpress:
  base_url: "https://example.com/wp-json/redcoes/v1"
session_token:
  jwt_secret_key: "test_secret"
`
	writeTempConfig(t, configContent)

	output, panicked := captureOutput(func() {
		cfg := MustLoad()

		assert.Equal(t, "test", cfg.Env)
		assert.Equal(t, "test_secret", cfg.JWTSecretKey)

		// Значения по умолчанию из env-default
		assert.Equal(t, "localhost:6379", cfg.AddressRedis)
		assert.Equal(t, "localhost:8080", cfg.AddressHTTP)
		assert.Equal(t, 10*time.Second, cfg.TimeoutHTTP)
		assert.Equal(t, 60*time.Second, cfg.IdleTimeout)
		assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
		assert.Equal(t, 30*time.Second, cfg.Moodle.Timeout)
		assert.Equal(t, 8, cfg.FanoutLimit)
		assert.Equal(t, 5*time.Second, cfg.VerifyTimeout)
		assert.Equal(t, 24*time.Hour, cfg.DatasetTTL)
	})

	assert.Empty(t, output)
	assert.False(t, panicked)
}

func TestConfig_String_HidesSecrets(t *testing.T) {
	cfg := &Config{
		Moodle:       Moodle{BaseURL: "https://aula.example.edu", Token: "very_secret_token"},
		SessionToken: SessionToken{JWTSecretKey: "signing_key"},
	}

	s := cfg.String()
	assert.Contains(t, s, "https://aula.example.edu")
	assert.NotContains(t, s, "very_secret_token")
	assert.NotContains(t, s, "signing_key")
}
