// Package confutil contains helpers to build config.Config objects in
// tests without going through environment variable discovery.
package confutil

import (
	"path/filepath"
	"testing"

	"github.com/halfmoon-dev/gitobj/config"
	"github.com/halfmoon-dev/gitobj/env"
	"github.com/stretchr/testify/require"
)

// NewCommonConfig returns a Config rooted at dir/.git, suitable for a
// regular (non-bare) repository in tests.
func NewCommonConfig(t *testing.T, dir string) *config.Config {
	t.Helper()

	cfg, err := config.LoadConfig(env.NewFromKVList(nil), config.LoadConfigOptions{
		WorkingDirectory: dir,
		GitDirPath:       filepath.Join(dir, ".git"),
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)
	return cfg
}

// NewCommonConfigBare returns a Config rooted directly at dir, with no
// working tree, suitable for a bare repository in tests.
func NewCommonConfigBare(t *testing.T, dir string) *config.Config {
	t.Helper()

	cfg, err := config.LoadConfig(env.NewFromKVList(nil), config.LoadConfigOptions{
		WorkingDirectory: dir,
		GitDirPath:       dir,
		IsBare:           true,
		SkipGitDirLookUp: true,
	})
	require.NoError(t, err)
	return cfg
}
