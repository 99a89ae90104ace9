package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
default_model = gpt-3.5-turbo
default_chat_mode = assistant
available_text_models = gpt-3.5-turbo, gpt-4o
max_history_tokens = 2500

[mode.assistant]
name = Ассистент
welcome_message = Чем могу помочь?
prompt = Ты дружелюбный ассистент.

[mode.artist]
name = Художник
prompt = Рисуй.

[model.gpt-3.5-turbo]
name = GPT-3.5
price_per_1000_input_tokens = 0.0015
price_per_1000_output_tokens = 0.002

[model.gpt-4o]
name = GPT-4 Omni
price_per_1000_input_tokens = 0.005
price_per_1000_output_tokens = 0.015

[image]
price_per_1_image = 0.02

[whisper]
price_per_1_min = 0.006
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	require.Equal(t, "gpt-3.5-turbo", cfg.DefaultModel)
	require.Equal(t, "assistant", cfg.DefaultMode)
	require.Equal(t, []string{"gpt-3.5-turbo", "gpt-4o"}, cfg.TextModels)
	require.Equal(t, 2500, cfg.MaxHistoryTokens)

	require.Len(t, cfg.Modes, 2)
	require.Equal(t, "Ассистент", cfg.Modes["assistant"].Name)
	require.Equal(t, "Чем могу помочь?", cfg.Modes["assistant"].WelcomeMessage)
	require.Equal(t, []string{"assistant", "artist"}, cfg.ModeOrder)

	in, out, ok := cfg.TokenPrice("gpt-3.5-turbo")
	require.True(t, ok)
	require.Equal(t, 0.0015, in)
	require.Equal(t, 0.002, out)

	_, _, ok = cfg.TokenPrice("nonexistent")
	require.False(t, ok)

	require.Equal(t, 0.02, cfg.ImagePrice())
	require.Equal(t, 0.006, cfg.MinutePrice())
}

func TestLoadRejectsModelWithoutSection(t *testing.T) {
	broken := `
default_model = gpt-3.5-turbo
available_text_models = gpt-3.5-turbo

[mode.assistant]
name = Ассистент
`
	_, err := Load(writeConfig(t, broken))
	require.Error(t, err)
	require.Contains(t, err.Error(), "gpt-3.5-turbo")
}

func TestLoadRejectsUnknownDefaultMode(t *testing.T) {
	broken := `
default_model = m
default_chat_mode = missing

[model.m]
name = M
`
	_, err := Load(writeConfig(t, broken))
	require.Error(t, err)
}
