package logging

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestIsRateLimit(t *testing.T) {
	assert.False(t, IsRateLimit(nil))
	assert.False(t, IsRateLimit(errors.New("connection refused")))
	assert.True(t, IsRateLimit(errors.New("429 Too Many Requests")))
	assert.True(t, IsRateLimit(errors.New("exceeded rate limit for project")))
	assert.True(t, IsRateLimit(fmt.Errorf("read proposal: %w", rpc.HTTPError{StatusCode: 429, Status: "429"})))
	assert.False(t, IsRateLimit(rpc.HTTPError{StatusCode: 502, Status: "502 Bad Gateway"}))
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, lvl)

	lvl, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewAndOrNop(t *testing.T) {
	l, err := New("warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	assert.NotNil(t, OrNop(nil))
	assert.Same(t, l, OrNop(l))
}
