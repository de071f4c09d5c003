package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClient_Defaults(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)

	cfg, err := LoadClient(v)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8001/api", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, StoreSQLite, cfg.Credentials.Backend)
	assert.Equal(t, "default", cfg.Credentials.Profile)
	assert.Equal(t, uint32(5), cfg.Breaker.MaxFailures)
}

func TestLoadClient_EnvOverride(t *testing.T) {
	t.Setenv("STOREFRONT_API_URL", "https://shop.example.com/api")
	t.Setenv("STOREFRONT_CREDENTIALS_BACKEND", "memory")

	v, err := NewViper("")
	require.NoError(t, err)

	cfg, err := LoadClient(v)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/api", cfg.APIURL)
	assert.Equal(t, StoreMemory, cfg.Credentials.Backend)
}

func TestLoadClient_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.yaml")
	content := []byte("api_url: http://127.0.0.1:9000/api\ncredentials:\n  backend: redis\n  redis_addr: cache:6379\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	v, err := NewViper(path)
	require.NoError(t, err)

	cfg, err := LoadClient(v)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000/api", cfg.APIURL)
	assert.Equal(t, StoreRedis, cfg.Credentials.Backend)
	assert.Equal(t, "cache:6379", cfg.Credentials.RedisAddr)
}

func TestClientValidate(t *testing.T) {
	valid := func() Client {
		return Client{
			APIURL:         "http://localhost:8001/api",
			RequestTimeout: time.Second,
			Credentials:    CredentialStore{Backend: StoreMemory, Profile: "default"},
		}
	}

	tests := []struct {
		name      string
		mutate    func(c *Client)
		wantError string
	}{
		{
			name:   "valid: ok",
			mutate: func(*Client) {},
		},
		{
			name:      "non-http scheme: error",
			mutate:    func(c *Client) { c.APIURL = "ftp://example.com" },
			wantError: `api_url must be http or https, got "ftp://example.com"`,
		},
		{
			name:      "zero timeout: error",
			mutate:    func(c *Client) { c.RequestTimeout = 0 },
			wantError: "request_timeout must be positive",
		},
		{
			name:      "unknown backend: error",
			mutate:    func(c *Client) { c.Credentials.Backend = "etcd" },
			wantError: `unknown credentials.backend "etcd"`,
		},
		{
			name: "sqlite without path: error",
			mutate: func(c *Client) {
				c.Credentials.Backend = StoreSQLite
				c.Credentials.Path = ""
			},
			wantError: "credentials.path is required for the sqlite backend",
		},
		{
			name:      "empty profile: error",
			mutate:    func(c *Client) { c.Credentials.Profile = "" },
			wantError: "credentials.profile is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLoadServer_Defaults(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)

	cfg, err := LoadServer(v)
	require.NoError(t, err)

	assert.Equal(t, ":8001", cfg.Addr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.Seed)
	assert.Empty(t, cfg.MongoURI)
}
