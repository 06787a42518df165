// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Buffer tuning configuration: defaults, optional file, HIOBUF_* environment
// overrides, and a thread-safe store that propagates reloads.

package control

import (
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. HIOBUF_TRACK=1.
const EnvPrefix = "HIOBUF"

// Config holds the runtime knobs of the buffer layer.
type Config struct {
	// Track enables every tracking kind at once.
	Track           bool `mapstructure:"track"`
	TrackAlloc      bool `mapstructure:"track_alloc"`
	TrackCRC        bool `mapstructure:"track_crc"`
	TrackContiguous bool `mapstructure:"track_contiguous"`

	// MaxPipeSize overrides the kernel pipe limit for zero-copy segments;
	// 0 reads it from the kernel.
	MaxPipeSize int `mapstructure:"max_pipe_size"`

	RecyclePages     bool `mapstructure:"recycle_pages"`
	PagePoolCapacity int  `mapstructure:"page_pool_capacity"`
	MaxAlloc         int  `mapstructure:"max_alloc"`

	LogLevel string `mapstructure:"log_level"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		PagePoolCapacity: 1024,
		MaxAlloc:         1<<31 - 1,
		LogLevel:         "info",
	}
}

func (c Config) normalize() Config {
	if c.Track {
		c.TrackAlloc, c.TrackCRC, c.TrackContiguous = true, true, true
	}
	return c
}

func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("track", d.Track)
	v.SetDefault("track_alloc", d.TrackAlloc)
	v.SetDefault("track_crc", d.TrackCRC)
	v.SetDefault("track_contiguous", d.TrackContiguous)
	v.SetDefault("max_pipe_size", d.MaxPipeSize)
	v.SetDefault("recycle_pages", d.RecyclePages)
	v.SetDefault("page_pool_capacity", d.PagePoolCapacity)
	v.SetDefault("max_alloc", d.MaxAlloc)
	v.SetDefault("log_level", d.LogLevel)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	return c.normalize(), nil
}

// LoadConfig reads defaults, then path when it is not empty, then the
// environment.
func LoadConfig(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	}
	return decode(v)
}

// Store is a thread-safe holder of the active Config with reload listeners.
type Store struct {
	mu        sync.RWMutex
	cfg       Config
	listeners []func(Config)
}

// NewStore initializes a store with cfg.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg.normalize()}
}

// Get returns a copy of the active configuration.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Set replaces the configuration and notifies listeners in registration
// order on the caller's goroutine.
func (s *Store) Set(cfg Config) {
	cfg = cfg.normalize()
	s.mu.Lock()
	s.cfg = cfg
	ls := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range ls {
		fn(cfg)
	}
}

// OnReload registers a listener and calls it once with the active config.
func (s *Store) OnReload(fn func(Config)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	cfg := s.cfg
	s.mu.Unlock()
	fn(cfg)
}
