// control/hotreload.go
// Author: momentics <momentics@gmail.com>
//
// File-driven hot reload: the config file is watched and every change is
// pushed into a Store.

package control

import (
	"github.com/fsnotify/fsnotify"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// Watch loads path into s and keeps s in sync with later edits of the file.
// Edits that fail to parse are logged and leave the store untouched.
func Watch(path string, s *Store, logger log.Logger) error {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := decode(v)
	if err != nil {
		return err
	}
	s.Set(cfg)
	v.OnConfigChange(func(ev fsnotify.Event) {
		cfg, err := decode(v)
		if err != nil {
			level.Warn(logger).Log("msg", "config reload rejected", "path", path, "err", err)
			return
		}
		level.Info(logger).Log("msg", "config reloaded", "path", path, "op", ev.Op.String())
		s.Set(cfg)
	})
	v.WatchConfig()
	return nil
}
