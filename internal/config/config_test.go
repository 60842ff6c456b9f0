package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "PORT", "CORS_ALLOWED_ORIGINS", "AI_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL",
		"HISTORY_DRIVER", "HISTORY_CONVERSATION_ID", "HISTORY_LIMIT", "ARK_TEMPERATURE")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.GeminiModel)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, DriverMemory, cfg.History.Driver)
	assert.Equal(t, "main_chat_session", cfg.History.ConversationID)
	assert.Equal(t, 50, cfg.History.Limit)
	assert.Nil(t, cfg.AI.Temperature)
}

func TestLoadAddrForms(t *testing.T) {
	cases := map[string]string{
		"8080":           ":8080",
		":9090":          ":9090",
		"127.0.0.1:5000": "127.0.0.1:5000",
	}
	for port, want := range cases {
		t.Run(port, func(t *testing.T) {
			t.Setenv("PORT", port)
			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, want, cfg.Server.Addr)
		})
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"port with space":  {"PORT", "50 00"},
		"unknown provider": {"AI_PROVIDER", "openai"},
		"unknown driver":   {"HISTORY_DRIVER", "firestore"},
		"bad temperature":  {"ARK_TEMPERATURE", "warm"},
		"bad history size": {"HISTORY_LIMIT", "many"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoadArkProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "ARK")
	t.Setenv("ARK_API_KEY", "key")
	t.Setenv("ARK_MODEL", "ep-123")
	t.Setenv("ARK_TEMPERATURE", "0.3")
	t.Setenv("ARK_MAX_TOKENS", "512")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderArk, cfg.AI.Provider)
	assert.True(t, cfg.AI.Enabled())
	require.NotNil(t, cfg.AI.Temperature)
	assert.InDelta(t, 0.3, *cfg.AI.Temperature, 1e-9)
	require.NotNil(t, cfg.AI.MaxTokens)
	assert.Equal(t, 512, *cfg.AI.MaxTokens)
}

func TestLoadClampsHistoryLimit(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, minHistoryLimit, cfg.History.Limit)
}

func TestLoadClient(t *testing.T) {
	unsetEnv(t, "CHAT_ENDPOINT")
	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5000/chat", cfg.Endpoint)

	t.Setenv("CHAT_ENDPOINT", "http://example.test/chat")
	cfg, err = LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://example.test/chat", cfg.Endpoint)
}
