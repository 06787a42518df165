// File: cmd/bufseq/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// bufseq inspects and moves files through segmented buffer lists.

package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/momentics/hioload-buffer/buffer"
	"github.com/momentics/hioload-buffer/control"
	"github.com/momentics/hioload-buffer/pool"
)

type flagsMain struct {
	Config   string
	LogLevel string
	Metrics  bool
}

// runtimeEnv is the wiring shared by every subcommand.
type runtimeEnv struct {
	logger   log.Logger
	store    *control.Store
	pages    *pool.PagePool
	alloc    *buffer.Allocator
	counters *control.Counters
	registry *prometheus.Registry
	gate     *control.Gate
}

func (e *runtimeEnv) newList() *buffer.List {
	return buffer.NewList(buffer.WithAllocator(e.alloc))
}

func (e *runtimeEnv) readFile(path string) (*buffer.List, error) {
	l := e.newList()
	if _, err := l.ReadFile(path); err != nil {
		l.Release()
		return nil, err
	}
	return l, nil
}

func setupEnv(flags *flagsMain, stderr io.Writer) (*runtimeEnv, error) {
	cfg, err := control.LoadConfig("")
	if err != nil {
		return nil, err
	}
	if flags.Config != "" {
		if cfg, err = control.LoadConfig(flags.Config); err != nil {
			return nil, err
		}
	}
	lvl := cfg.LogLevel
	if flags.LogLevel != "" {
		lvl = flags.LogLevel
	}
	logger, err := control.NewLogger(stderr, lvl)
	if err != nil {
		return nil, err
	}

	e := &runtimeEnv{
		logger:   logger,
		store:    control.NewStore(cfg),
		pages:    pool.NewPagePool(pool.WithCapacity(cfg.PagePoolCapacity), pool.WithRecycling(cfg.RecyclePages)),
		counters: control.NewCounters(),
		registry: prometheus.NewRegistry(),
	}
	e.gate = control.NewGate(control.Fanout{e.counters, control.NewPrometheusTracker(e.registry)})
	e.alloc = buffer.NewAllocator(
		buffer.WithTracker(e.gate),
		buffer.WithLogger(logger),
		buffer.WithPages(e.pages),
		buffer.WithMaxAlloc(cfg.MaxAlloc),
		buffer.WithMaxPipeSize(cfg.MaxPipeSize),
	)
	e.store.OnReload(func(c control.Config) {
		if flags.Metrics {
			c.Track = true
		}
		e.gate.Apply(c)
		e.pages.SetRecycling(c.RecyclePages)
		e.alloc.SetMaxPipeSize(c.MaxPipeSize)
	})
	if flags.Config != "" {
		if err := control.Watch(flags.Config, e.store, logger); err != nil {
			level.Warn(logger).Log("msg", "config watch disabled", "err", err)
		}
	}
	return e, nil
}

func (e *runtimeEnv) printMetrics(w io.Writer) error {
	dp := control.NewDebugProbes()
	control.RegisterBufferProbes(dp, e.pages, e.counters)
	state := dp.DumpState()
	for _, name := range dp.Names() {
		fmt.Fprintf(w, "%s: %v\n", name, state[name])
	}
	mfs, err := e.registry.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
			case m.GetGauge() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetGauge().GetValue()))
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var (
		flags flagsMain
		env   runtimeEnv
	)
	cmd := &cobra.Command{
		Use:           "bufseq",
		Short:         "Inspect and move files through segmented buffers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setupEnv(&flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			env = *e
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if !flags.Metrics {
				return nil
			}
			return env.printMetrics(cmd.ErrOrStderr())
		},
	}
	cmd.PersistentFlags().StringVarP(&flags.Config, "config", "c", "", "Configuration file (yaml, toml or json)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().BoolVar(&flags.Metrics, "metrics", false, "Print buffer metrics to stderr after the command")

	cmd.AddCommand(
		newCrcCmd(&env),
		newHexdumpCmd(&env),
		newBase64Cmd(&env),
		newCopyCmd(&env),
		newStatCmd(&env),
		newCompressCmd(&env, false),
		newCompressCmd(&env, true),
	)
	return cmd
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
