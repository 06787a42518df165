// control/logging_test.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"bytes"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn")
	require.NoError(t, err)

	level.Info(logger).Log("msg", "quiet")
	level.Warn(logger).Log("msg", "loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "msg=loud")
	assert.Contains(t, out, "level=warn")
	assert.Contains(t, out, "caller=")
}

func TestNewLoggerUnknownLevel(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, "loud")
	require.Error(t, err)
}
