package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerIsUsableBeforeInitialize(t *testing.T) {
	assert.NotPanics(t, func() {
		Named("test").Infow("hello", "k", "v")
	})
}

func TestInitialize(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	require.NoError(t, Initialize(true, "debug"))
	assert.True(t, Logger.Desugar().Core().Enabled(-1))

	require.NoError(t, Initialize(false, ""))
	assert.False(t, Logger.Desugar().Core().Enabled(-1))

	assert.Error(t, Initialize(false, "loud"))
}

func TestBootstrapReportsBeforeInitialize(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	var buf bytes.Buffer
	Bootstrap(&buf)
	Named("api").Errorw("load config failed", "err", "open /nonexistent.yaml: no such file")

	out := buf.String()
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "api")
	assert.Contains(t, out, "load config failed")
	assert.Contains(t, out, "/nonexistent.yaml")

	require.Error(t, Initialize(false, "loud"))
	Named("api").Errorw("init logger failed")
	assert.Contains(t, buf.String(), "init logger failed", "bootstrap logger survives a failed Initialize")
}
