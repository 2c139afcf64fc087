package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"martianoff/assocgen/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	assert.Equal(t, "_assoc.go", cfg.Suffix)
	assert.Equal(t, config.ColorAuto, cfg.Color)
	assert.False(t, cfg.Strict)
	assert.Empty(t, cfg.Types)
	assert.NoError(t, cfg.Validate())
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected *config.Config
		errMsg   string
	}{
		{
			name: "All keys",
			data: "suffix: _dispatch.go\nstrict: true\ntypes: [Kind, Shape]\ncolor: never\n",
			expected: &config.Config{
				Suffix: "_dispatch.go",
				Strict: true,
				Types:  []string{"Kind", "Shape"},
				Color:  config.ColorNever,
				Path:   "assocgen.yaml",
			},
		},
		{
			name: "Missing keys keep defaults",
			data: "strict: true\n",
			expected: &config.Config{
				Suffix: "_assoc.go",
				Strict: true,
				Color:  config.ColorAuto,
				Path:   "assocgen.yaml",
			},
		},
		{
			name:   "Test file suffix",
			data:   "suffix: _assoc_test.go\n",
			errMsg: "must not name a test file",
		},
		{
			name:   "Suffix with directory",
			data:   "suffix: gen/_assoc.go\n",
			errMsg: "path separator",
		},
		{
			name:   "Unknown color",
			data:   "color: sometimes\n",
			errMsg: `got "sometimes"`,
		},
		{
			name:   "Malformed YAML",
			data:   "types: [Kind\n",
			errMsg: "parsing assocgen.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.ParseConfig([]byte(tt.data), "assocgen.yaml")
			if tt.errMsg != "" {
				assert.ErrorContains(t, err, tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	path, err := config.FindConfig(nested)
	require.NoError(t, err)
	assert.Empty(t, path)

	want := filepath.Join(root, "a", config.FileName)
	require.NoError(t, os.WriteFile(want, []byte("strict: true\n"), 0644))

	path, err = config.FindConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, want, path)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("suffix: _gen.go\n"), 0644))

	t.Run("Nearest file", func(t *testing.T) {
		cfg, err := config.Load(dir, "")
		require.NoError(t, err)
		assert.Equal(t, "_gen.go", cfg.Suffix)
		assert.Equal(t, filepath.Join(dir, config.FileName), cfg.Path)
	})

	t.Run("Explicit file", func(t *testing.T) {
		other := filepath.Join(t.TempDir(), "custom.yaml")
		require.NoError(t, os.WriteFile(other, []byte("strict: true\n"), 0644))

		cfg, err := config.Load(dir, other)
		require.NoError(t, err)
		assert.Equal(t, "_assoc.go", cfg.Suffix)
		assert.True(t, cfg.Strict)
	})

	t.Run("Missing explicit file", func(t *testing.T) {
		_, err := config.Load(dir, filepath.Join(dir, "nope.yaml"))
		assert.ErrorContains(t, err, "reading config")
	})

	t.Run("Environment overrides file", func(t *testing.T) {
		t.Setenv("ASSOCGEN_SUFFIX", "_env.go")
		t.Setenv("ASSOCGEN_STRICT", "1")

		cfg, err := config.Load(dir, "")
		require.NoError(t, err)
		assert.Equal(t, "_env.go", cfg.Suffix)
		assert.True(t, cfg.Strict)
	})

	t.Run("Invalid environment", func(t *testing.T) {
		t.Setenv("ASSOCGEN_STRICT", "maybe")

		_, err := config.Load(dir, "")
		assert.ErrorContains(t, err, "ASSOCGEN_STRICT")
	})
}
