package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/pagetable/internal/config"
	"github.com/dbsmedya/pagetable/internal/logger"
	"github.com/dbsmedya/pagetable/internal/render"
)

var plainView = &render.Config{UseAscii: true, Color: false}

// testApp returns a memory-backed app with no delay, a fixed seed and a
// result set of exactly total records.
func testApp(t *testing.T, total int) *app {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Source.DelayMillis = 0
	cfg.Source.MinResults = total
	cfg.Source.MaxResults = total
	cfg.Source.Seed = 42
	require.NoError(t, cfg.Validate())

	a, err := newApp(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

// writeFile writes content to name under a temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// withConfigFlags points the config and env file flags at the given paths
// for the duration of the test.
func withConfigFlags(t *testing.T, cfgPath, envPath string) {
	t.Helper()
	origCfg, origEnv := cfgFile, envFile
	cfgFile, envFile = cfgPath, envPath
	t.Cleanup(func() {
		cfgFile, envFile = origCfg, origEnv
	})
}

func TestExecute(t *testing.T) {
	// Execute() calls os.Exit(1) on error, so only its presence is checked.
	assert.NotNil(t, Execute)
}

func TestVersionVariables(t *testing.T) {
	assert.NotEmpty(t, Version, "Version should not be empty")
	assert.NotEmpty(t, Commit, "Commit should not be empty")
}

func TestCLIFlagsVariables(t *testing.T) {
	assert.Equal(t, "pagetable.yaml", cfgFile, "cfgFile should default to pagetable.yaml")
	assert.Equal(t, ".env", envFile)
	assert.Equal(t, "", logLevel)
	assert.Equal(t, "", logFormat)
	assert.Equal(t, 0, pageSize)
	assert.Equal(t, 0, delayMillis)
	assert.Equal(t, "", driver)
}

func TestCommandVariables(t *testing.T) {
	assert.Equal(t, 1, pageNumber, "pageNumber should default to 1")
	assert.Equal(t, "", pageQuery)
	assert.Equal(t, 100, seedCount)
	assert.Equal(t, "", browseMetricsAddr)
}

func TestNewApp_Memory(t *testing.T) {
	a := testApp(t, 10)

	assert.NotNil(t, a.store)
	assert.Nil(t, a.db)
	assert.Nil(t, a.sql)
	assert.Equal(t, "closed", a.breaker.State())
	assert.Equal(t, 99, a.store.Total(), "store starts primed")
}
