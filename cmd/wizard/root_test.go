package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wizard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viacep-url: http://file.example\ntimeout: 2s\nformat: yaml\n"), 0o600))
	t.Setenv("SIGNUP_WIZARD_TIMEOUT", "3s")

	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Set("format", "json"))

	v := viper.New()
	require.NoError(t, loadConfig(v, cmd, path))
	opts, err := optionsFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "http://file.example", opts.viaCEPURL)
	assert.Equal(t, 3*time.Second, opts.timeout)
	assert.Equal(t, formatJSON, opts.format)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	err := loadConfig(viper.New(), newRootCmd(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestOptionsRejectUnknownFormat(t *testing.T) {
	v := viper.New()
	v.Set("timeout", time.Second)
	v.Set("format", "xml")
	_, err := optionsFrom(v)
	assert.ErrorContains(t, err, "unsupported format")
}
