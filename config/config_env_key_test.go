package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"api": map[string]any{
			"baseUrl": "",
			"rateLimit": map[string]any{
				"rps": 5,
			},
		},
		"payment": map[string]any{
			"keyId": "",
			"callback": map[string]any{
				"port": 0,
			},
		},
		"session": map[string]any{
			"encryptionKey": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "API_BASEURL", want: "api.baseUrl"},
		{envKey: "API_RATELIMIT_RPS", want: "api.rateLimit.rps"},
		{envKey: "PAYMENT_KEYID", want: "payment.keyId"},
		{envKey: "PAYMENT_CALLBACK_PORT", want: "payment.callback.port"},
		{envKey: "SESSION_ENCRYPTIONKEY", want: "session.encryptionKey"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:8000/api"
	cfg.Session.TokenPath = "/tmp/token"

	require.NoError(t, cfg.applyDefaults())

	assert.Equal(t, "http://localhost:8000/api/", cfg.API.BaseURL)
	assert.Equal(t, "INR", cfg.Payment.Currency)
	assert.Equal(t, "127.0.0.1", cfg.Payment.Callback.Host)
	assert.Equal(t, 10*time.Minute, cfg.Payment.Callback.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Geolocation.Timeout)
	assert.InDelta(t, 28.6139, cfg.Geolocation.DefaultLatitude, 1e-9)
	assert.InDelta(t, 77.2090, cfg.Geolocation.DefaultLongitude, 1e-9)
	assert.Equal(t, 256, cfg.QRCode.Size)
	assert.Equal(t, int64(5<<20), cfg.Attachment.MaxBytes)
	assert.Equal(t, []string{"image/jpeg", "image/png"}, cfg.Attachment.AllowedTypes)
}

func TestApplyDefaults_RequiresBaseURL(t *testing.T) {
	cfg := &Config{}

	err := cfg.applyDefaults()

	assert.Error(t, err)
}
