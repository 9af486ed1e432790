package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/pathfinder/internal/llm"
)

func TestAppConfig(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantModel string
		wantErr   bool
	}{
		{"gemini default model", nil, llm.DefaultGeminiModel, false},
		{"gemini explicit model", []string{"--llm-model", "gemini-2.5-pro"}, "gemini-2.5-pro", false},
		{"openai needs a model", []string{"--provider", "openai"}, "", true},
		{"openai with model", []string{"--provider", "OpenAI", "--llm-model", "gpt-4o-mini"}, "gpt-4o-mini", false},
		{"unknown provider", []string{"--provider", "ollama"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			cmd := askCmd()
			require.NoError(t, cmd.ParseFlags(tt.args))

			cfg, err := appConfig(viperForCmd(cmd))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, cfg.Model)
			assert.Equal(t, "es", cfg.Lang)
		})
	}
}

func TestAPIKeySources(t *testing.T) {
	t.Run("plain API_KEY", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("API_KEY", "from-env")
		v := viperForCmd(askCmd())
		assert.Equal(t, "from-env", v.GetString("api-key"))
	})

	t.Run("prefixed variable wins", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("API_KEY", "plain")
		t.Setenv("PATHFINDER_API_KEY", "prefixed")
		v := viperForCmd(askCmd())
		assert.Equal(t, "prefixed", v.GetString("api-key"))
	})

	t.Run("dotenv file", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		t.Setenv("PATHFINDER_API_KEY", "")
		require.NoError(t, os.Unsetenv("PATHFINDER_API_KEY"))
		t.Setenv("API_KEY", "")
		require.NoError(t, os.Unsetenv("API_KEY"))
		t.Cleanup(func() { _ = os.Unsetenv("API_KEY") })
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("API_KEY=from-dotenv\n"), 0o600))

		v := viperForCmd(askCmd())
		assert.Equal(t, "from-dotenv", v.GetString("api-key"))
	})
}

func TestNewGatewayWithoutKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_KEY", "")
	t.Setenv("PATHFINDER_API_KEY", "")
	v := viperForCmd(askCmd())
	cfg, err := appConfig(v)
	require.NoError(t, err)

	gw, err := newGateway(context.Background(), v, cfg)
	require.NoError(t, err)
	assert.Nil(t, gw)
}

func TestNewGatewayOpenAI(t *testing.T) {
	t.Chdir(t.TempDir())
	cmd := askCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--provider", "openai", "--llm-model", "gpt-4o-mini", "--api-key", "sk-test"}))
	v := viperForCmd(cmd)
	cfg, err := appConfig(v)
	require.NoError(t, err)

	gw, err := newGateway(context.Background(), v, cfg)
	require.NoError(t, err)
	assert.IsType(t, &llm.OpenAIGateway{}, gw)
}
