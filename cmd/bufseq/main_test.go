// File: cmd/bufseq/main_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestCrc(t *testing.T) {
	path := writeTemp(t, "check", []byte("123456789"))
	out, _, err := run(t, "crc", path)
	require.NoError(t, err)
	assert.Equal(t, "e3069283\n", out)
}

func TestHexdump(t *testing.T) {
	path := writeTemp(t, "hd", []byte("AB\x00"))
	out, _, err := run(t, "hexdump", path)
	require.NoError(t, err)
	assert.Equal(t, "0000 : 41 42 00"+string(bytes.Repeat([]byte("   "), 13))+" : AB.\n", out)
}

func TestBase64RoundTrip(t *testing.T) {
	in := writeTemp(t, "plain", []byte("any carnal pleasure."))
	dir := t.TempDir()
	enc := filepath.Join(dir, "enc")
	dec := filepath.Join(dir, "dec")

	_, _, err := run(t, "base64", "encode", in, enc)
	require.NoError(t, err)
	got, err := os.ReadFile(enc)
	require.NoError(t, err)
	assert.Equal(t, "YW55IGNhcm5hbCBwbGVhc3VyZS4=", string(got))

	_, _, err = run(t, "base64", "decode", enc, dec)
	require.NoError(t, err)
	got, err = os.ReadFile(dec)
	require.NoError(t, err)
	assert.Equal(t, "any carnal pleasure.", string(got))
}

func TestCompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("segmented buffers "), 4096)
	in := writeTemp(t, "plain", data)
	dir := t.TempDir()
	for _, name := range []string{"snappy", "zstd", "gzip", "lz4", "none"} {
		packed := filepath.Join(dir, name+".z")
		back := filepath.Join(dir, name+".out")
		_, _, err := run(t, "compress", "--codec", name, in, packed)
		require.NoError(t, err, name)
		_, _, err = run(t, "decompress", "--codec", name, packed, back)
		require.NoError(t, err, name)
		got, err := os.ReadFile(back)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(data, got), name)
	}

	_, _, err := run(t, "compress", "--codec", "brotli", in, filepath.Join(dir, "x"))
	require.Error(t, err)
}

func TestCopy(t *testing.T) {
	data := bytes.Repeat([]byte{0xa5, 0x5a, 0x00}, 50_000)
	in := writeTemp(t, "src", data)
	dst := filepath.Join(t.TempDir(), "dst")

	_, _, err := run(t, "copy", in, dst)
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got))
}

func TestStatWithMetrics(t *testing.T) {
	path := writeTemp(t, "stat", bytes.Repeat([]byte("x"), 5000))
	out, errOut, err := run(t, "--metrics", "stat", path)
	require.NoError(t, err)
	assert.Contains(t, out, "length:     5000 (4.9 KiB)")
	assert.Contains(t, out, "segments:   1")
	assert.Contains(t, out, "strategy=aligned")
	assert.Contains(t, errOut, "hiobuf_allocated_bytes_total ")
	assert.Contains(t, errOut, "tracker.counters: live")
}

func TestConfigFile(t *testing.T) {
	cfg := writeTemp(t, "buffer.yaml", []byte("log_level: debug\n"))
	path := writeTemp(t, "data", []byte("abc"))
	_, errOut, err := run(t, "--config", cfg, "base64", "encode", path, filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	assert.Contains(t, errOut, "msg=transformed")
}

func TestBadLogLevel(t *testing.T) {
	path := writeTemp(t, "data", []byte("abc"))
	_, _, err := run(t, "--log-level", "chatty", "crc", path)
	require.Error(t, err)
}
