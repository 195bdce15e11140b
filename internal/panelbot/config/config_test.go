package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 15*time.Second, cfg.Panel.Timeout)
	assert.Equal(t, "json", cfg.Store.Backend)
	assert.Equal(t, "0.0.0.0:7788", cfg.Address)
	assert.Equal(t, 2, cfg.Quota.MaxInstancesPerUser)
	assert.Equal(t, 10*time.Minute, cfg.Link.CodeTTL)
	assert.Equal(t, 30*time.Second, cfg.Link.WaitTimeout)
	assert.Equal(t, 60*time.Second, cfg.Delete.ConfirmTimeout)
	assert.Equal(t, "https://discord.com/api/users/@me", cfg.OAuth.UserInfoURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NotEmpty(t, cfg.DataDir)
	assert.False(t, cfg.OAuth.Enabled())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PANELBOT_PANEL_URL", "https://panel.example.com/")
	t.Setenv("PANELBOT_PANEL_API_KEY", "ptla_x")
	t.Setenv("PANELBOT_QUOTA_MAX_INSTANCES_PER_USER", "5")
	t.Setenv("PANELBOT_STORE_BACKEND", "SQLite")
	t.Setenv("PANELBOT_LINK_CODE_TTL", "5m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://panel.example.com", cfg.Panel.URL)
	assert.Equal(t, "ptla_x", cfg.Panel.APIKey)
	assert.Equal(t, 5, cfg.Quota.MaxInstancesPerUser)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Link.CodeTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "panelbot.yaml")
	content := `
panel:
  url: https://panel.example.com
  api_key: ptla_file
quota:
  max_instances_per_user: 3
oauth:
  client_id: cid
  client_secret: secret
  state_secret: s3cret
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "ptla_file", cfg.Panel.APIKey)
	assert.Equal(t, 3, cfg.Quota.MaxInstancesPerUser)
	assert.True(t, cfg.OAuth.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	testcases := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "missing panel url", modify: func(c *Config) { c.Panel.URL = "" }, wantErr: "panel.url"},
		{name: "missing api key", modify: func(c *Config) { c.Panel.APIKey = "" }, wantErr: "panel.api_key"},
		{name: "unknown backend", modify: func(c *Config) { c.Store.Backend = "redis" }, wantErr: "store.backend"},
		{name: "negative quota", modify: func(c *Config) { c.Quota.MaxInstancesPerUser = -1 }, wantErr: "quota"},
		{
			name: "oauth without state secret",
			modify: func(c *Config) {
				c.OAuth.ClientID = "id"
				c.OAuth.ClientSecret = "secret"
			},
			wantErr: "state_secret",
		},
		{name: "valid", modify: func(c *Config) {}},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				Panel: PanelConfig{URL: "https://panel.example.com", APIKey: "k"},
				Store: StoreConfig{Backend: "json"},
				Quota: QuotaConfig{MaxInstancesPerUser: 2},
			}
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
