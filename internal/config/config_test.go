package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GITHUB_TOKEN", "ISSUESTATS_GITHUB_TOKEN", "ISSUESTATS_SOURCE", "ISSUESTATS_LOG_FORMAT"} {
		t.Setenv(key, "")
	}
	// Run from an empty directory so no stray .env or config file is picked up.
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, SourceREST, cfg.Fetch.Source)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.ErrorIs(t, cfg.RequireToken(), ErrMissingToken)
}

func TestLoad_TokenFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.GitHub.Token)
	assert.NoError(t, cfg.RequireToken())
}

func TestLoad_ConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "github:\n  token: from-file\nfetch:\n  source: graphql\nlog:\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.GitHub.Token)
	assert.Equal(t, SourceGraphQL, cfg.Fetch.Source)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvalidSource(t *testing.T) {
	clearEnv(t)
	t.Setenv("ISSUESTATS_SOURCE", "soap")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}
