package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "solofeed.yaml")
	cfg := Default()
	cfg.Engagement.QuietHours = []int{1, 2}
	cfg.Random.Seed = 99
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got.Engagement.QuietHours)
	assert.Equal(t, uint64(99), got.Random.Seed)
	assert.Equal(t, 3*time.Second, got.Engagement.CommentStagger)
	assert.Equal(t, 45*time.Second, got.Engagement.FeedTickInterval)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solofeed.yaml")
	require.NoError(t, Save(path, Default()))
	t.Setenv("SOLOFEED_DB_PATH", "/tmp/override.db")
	t.Setenv("SOLOFEED_MAX_PER_HOUR", "4")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", got.Storage.DBPath)
	assert.Equal(t, 4, got.Engagement.MaxPerHour)
	assert.Equal(t, "you", got.Profile.Username)
}

func TestPartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solofeed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engagement:\n  likesMax: 4\n"), 0o644))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Engagement.LikesMax)
	assert.Equal(t, 3, got.Engagement.LikesMin)
	assert.Equal(t, 2*time.Second, got.Engagement.CommentBatchDelay)
}

func TestValidateRejectsBadRanges(t *testing.T) {
	cfg := Default()
	cfg.Engagement.LikesMax = 1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Engagement.SecondReplyChance = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Engagement.QuietHours = []int{24}
	assert.Error(t, cfg.Validate())

	assert.NoError(t, Default().Validate())
}

func TestLoadOrDefaultWithoutFile(t *testing.T) {
	got, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Storage, got.Storage)
}

func TestSaveEmptyPath(t *testing.T) {
	assert.Error(t, Save("", Default()))
}
