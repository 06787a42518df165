// control/config_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buffer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("track_crc: true\nmax_pipe_size: 131072\nlog_level: debug\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.TrackCRC)
	assert.False(t, cfg.TrackAlloc)
	assert.Equal(t, 131072, cfg.MaxPipeSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1024, cfg.PagePoolCapacity)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfigEnvTrackEnablesAll(t *testing.T) {
	t.Setenv("HIOBUF_TRACK", "1")
	t.Setenv("HIOBUF_RECYCLE_PAGES", "true")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.True(t, cfg.TrackAlloc)
	assert.True(t, cfg.TrackCRC)
	assert.True(t, cfg.TrackContiguous)
	assert.True(t, cfg.RecyclePages)
}

func TestStoreNotifiesListeners(t *testing.T) {
	s := NewStore(DefaultConfig())

	var seen []Config
	s.OnReload(func(c Config) { seen = append(seen, c) })
	require.Len(t, seen, 1)
	assert.False(t, seen[0].TrackAlloc)

	next := DefaultConfig()
	next.Track = true
	s.Set(next)

	require.Len(t, seen, 2)
	assert.True(t, seen[1].TrackAlloc)
	assert.True(t, s.Get().TrackContiguous)
}
