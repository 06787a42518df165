// File: cmd/bufseq/cmd_transform.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"os"

	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/momentics/hioload-buffer/buffer"
	"github.com/momentics/hioload-buffer/codec"
)

const outputPerm = 0o644

// transformFile reads in, applies fn into a fresh list and writes it to out.
func transformFile(env *runtimeEnv, in, out string, fn func(dst, src *buffer.List) error) error {
	src, err := env.readFile(in)
	if err != nil {
		return err
	}
	defer src.Release()
	dst := env.newList()
	defer dst.Release()
	if err := fn(dst, src); err != nil {
		return errors.Wrapf(err, "transform %s", in)
	}
	level.Debug(env.logger).Log("msg", "transformed", "in", in, "out", out, "from", src.Len(), "to", dst.Len())
	return dst.WriteFile(out, outputPerm)
}

func newBase64Cmd(env *runtimeEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "base64",
		Short: "Encode or decode base64 files",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "encode IN OUT",
			Short: "Base64-encode IN into OUT",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return transformFile(env, args[0], args[1], func(dst, src *buffer.List) error {
					return src.EncodeBase64(dst)
				})
			},
		},
		&cobra.Command{
			Use:   "decode IN OUT",
			Short: "Decode base64 IN into OUT",
			Args:  cobra.ExactArgs(2),
			RunE: func(_ *cobra.Command, args []string) error {
				return transformFile(env, args[0], args[1], func(dst, src *buffer.List) error {
					return dst.DecodeBase64(src)
				})
			},
		},
	)
	return cmd
}

func newCompressCmd(env *runtimeEnv, decompress bool) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "compress IN OUT",
		Short: "Compress IN into OUT",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			ty, err := codec.Parse(name)
			if err != nil {
				return err
			}
			fn := func(dst, src *buffer.List) error { return codec.Compress(dst, src, ty) }
			if decompress {
				fn = func(dst, src *buffer.List) error { return codec.Decompress(dst, src, ty) }
			}
			return transformFile(env, args[0], args[1], fn)
		},
	}
	if decompress {
		cmd.Use = "decompress IN OUT"
		cmd.Short = "Decompress IN into OUT"
	}
	cmd.Flags().StringVar(&name, "codec", codec.Zstd.String(), "Codec: none, snappy, zstd, gzip or lz4")
	return cmd
}

func newCopyCmd(env *runtimeEnv) *cobra.Command {
	var zeroCopy bool
	cmd := &cobra.Command{
		Use:   "copy SRC DST",
		Short: "Copy a file through a buffer list",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if !zeroCopy {
				l, err := env.readFile(args[0])
				if err != nil {
					return err
				}
				defer l.Release()
				return l.WriteFile(args[1], outputPerm)
			}
			return copyZeroCopy(env, args[0], args[1])
		},
	}
	cmd.Flags().BoolVar(&zeroCopy, "zero-copy", false, "Move data through kernel pipes with splice")
	return cmd
}

// copyZeroCopy splices SRC into pipe segments no larger than the pipe limit
// and splices them out to DST.
func copyZeroCopy(env *runtimeEnv, srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return errors.Wrap(err, "open source")
	}
	defer src.Close()
	st, err := src.Stat()
	if err != nil {
		return errors.Wrap(err, "stat source")
	}

	l := env.newList()
	defer l.Release()
	for remaining := int(st.Size()); remaining > 0; {
		before := l.Len()
		if err := l.ReadFDZeroCopy(int(src.Fd()), min(remaining, env.alloc.MaxPipeSize())); err != nil {
			return errors.Wrapf(err, "splice from %s", srcPath)
		}
		got := l.Len() - before
		if got == 0 {
			break
		}
		remaining -= got
	}
	level.Debug(env.logger).Log("msg", "spliced", "src", srcPath, "segments", l.NumBuffers(), "bytes", l.Len())
	return l.WriteFile(dstPath, outputPerm)
}
