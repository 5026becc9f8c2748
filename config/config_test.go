package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestWriteConfigFile(t *testing.T) {
	home := t.TempDir()
	cfg := DefaultConfig(home)
	cfg.App.Indexer = true
	cfg.App.QueryListen = "0.0.0.0:9000"
	cfg.App.IndexerPoll = 5 * time.Second

	path := filepath.Join(home, "config", "config.toml")
	require.NoError(t, WriteConfigFile(path, cfg))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	loaded := DefaultConfig(home)
	require.NoError(t, v.Unmarshal(loaded))
	require.True(t, loaded.App.Indexer)
	require.Equal(t, "0.0.0.0:9000", loaded.App.QueryListen)
	require.Equal(t, 5*time.Second, loaded.App.IndexerPoll)
	require.Equal(t, filepath.Join(home, "data/indexer.db"), loaded.App.IndexerDBPath())
	require.Equal(t, cfg.Consensus.TimeoutCommit, loaded.Consensus.TimeoutCommit)
}
