// File: cmd/bufseq/cmd_inspect.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/momentics/hioload-buffer/buffer"
)

func newCrcCmd(env *runtimeEnv) *cobra.Command {
	var seed uint32
	cmd := &cobra.Command{
		Use:   "crc FILE",
		Short: "Print the CRC32C of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := env.readFile(args[0])
			if err != nil {
				return err
			}
			defer l.Release()
			crc, err := l.CRC32C(seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%08x\n", crc)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&seed, "seed", 0, "Initial CRC value")
	return cmd
}

func newHexdumpCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "hexdump FILE",
		Short: "Dump a file as hex and printable characters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := env.readFile(args[0])
			if err != nil {
				return err
			}
			defer l.Release()
			return l.Hexdump(cmd.OutOrStdout())
		},
	}
}

func newStatCmd(env *runtimeEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "stat FILE",
		Short: "Describe the segments a file is read into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := env.readFile(args[0])
			if err != nil {
				return err
			}
			defer l.Release()
			return printStat(cmd, l)
		},
	}
}

func printStat(cmd *cobra.Command, l *buffer.List) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "length:     %d (%s)\n", l.Len(), humanize.IBytes(uint64(l.Len())))
	fmt.Fprintf(out, "segments:   %d\n", l.NumBuffers())
	fmt.Fprintf(out, "contiguous: %t\n", l.IsContiguous())
	fmt.Fprintf(out, "aligned:    %t\n", l.IsPageAligned())
	off := 0
	for i, p := range l.Buffers() {
		fmt.Fprintf(out, "  #%d off=%d len=%s strategy=%s raw=%s refs=%d\n",
			i, off, humanize.IBytes(uint64(p.Len())), p.Strategy(),
			humanize.IBytes(uint64(p.RawLen())), p.RawRefs())
		off += p.Len()
	}
	crc, err := l.CRC32C(0)
	if err != nil {
		return err
	}
	xx, err := buffer.XXHash64(l)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "crc32c:     %08x\n", crc)
	fmt.Fprintf(out, "xxhash64:   %016x\n", xx)
	return nil
}
