package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/some/path"},
		Images: ImagesConfig{MaxUploadBytes: 8 << 20},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"WARN", true}, // case insensitive
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_RejectsBadUploadLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Images.MaxUploadBytes = 0
	assert.Error(t, cfg.Validate())
}

func TestDerivedPaths(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, filepath.Join("/some/path", "promptvault.db"), cfg.DatabasePath())
	assert.Equal(t, filepath.Join("/some/path", "prefs"), cfg.PrefsPath())
	assert.Equal(t, filepath.Join("/some/path", "objects"), cfg.ObjectsPath())
	assert.Equal(t, "/some/path", cfg.SearchPath())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      string
		dflt    string
		want    string
		wantErr bool
	}{
		{"empty uses default", "", "/dflt", "/dflt", false},
		{"absolute passes through", "/abs/dir", "", "/abs/dir", false},
		{"tilde expands", "~/data", "", filepath.Join(home, "data"), false},
		{"cleans trailing slash", "/abs/dir/", "", "/abs/dir", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandPath(tt.in, tt.dflt)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "# comment\nTEST_PROMPTVAULT_KEY=hello\nTEST_PROMPTVAULT_QUOTED=\"world\"\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0o600))

	t.Cleanup(func() {
		os.Unsetenv("TEST_PROMPTVAULT_KEY")
		os.Unsetenv("TEST_PROMPTVAULT_QUOTED")
	})

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("TEST_PROMPTVAULT_KEY"))
	assert.Equal(t, "world", os.Getenv("TEST_PROMPTVAULT_QUOTED"))
}

func TestGetConfigValuePrecedence(t *testing.T) {
	t.Setenv("TEST_PROMPTVAULT_PRECEDENCE", "from-env")

	// Flag wins over env.
	assert.Equal(t, "from-flag", getConfigValue("from-flag", "TEST_PROMPTVAULT_PRECEDENCE", "dflt"))
	// Env wins over default.
	assert.Equal(t, "from-env", getConfigValue("", "TEST_PROMPTVAULT_PRECEDENCE", "dflt"))
	// Default when nothing else set.
	assert.Equal(t, "dflt", getConfigValue("", "TEST_PROMPTVAULT_MISSING", "dflt"))
}
