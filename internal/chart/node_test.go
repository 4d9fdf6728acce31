package chart

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ziwei/internal/chart/charttest"
)

// fakeNode writes a shell script standing in for the node binary.
func fakeNode(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a POSIX shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "node")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestNodeProviderDecodesOutput(t *testing.T) {
	fixture := filepath.Join(t.TempDir(), "chart.json")
	require.NoError(t, os.WriteFile(fixture, charttest.SampleJSON(), 0o644))
	bin := fakeNode(t, "cat >/dev/null\ncat "+fixture)

	p := NewNodeProvider(bin, t.TempDir(), time.Second)
	c, err := Compute(context.Background(), p, Request{Year: 1995, Month: 1, Day: 1, TimeSlot: 6, Gender: "男"})
	require.NoError(t, err)
	assert.Equal(t, "土五局", c.FiveElementsClass)
	assert.Equal(t, "廉貞", c.Palaces[charttest.PressureIndex].MajorStars[0].Name)
}

func TestNodeProviderFailure(t *testing.T) {
	bin := fakeNode(t, "echo \"Cannot find module 'iztro'\" >&2\nexit 1")

	_, err := NewNodeProvider(bin, t.TempDir(), time.Second).ByLunar(context.Background(), Request{TimeSlot: 1})
	require.ErrorIs(t, err, ErrEngine)
	assert.Contains(t, err.Error(), "Cannot find module")
}

func TestNodeProviderGarbage(t *testing.T) {
	bin := fakeNode(t, "echo not-json")

	_, err := NewNodeProvider(bin, t.TempDir(), time.Second).BySolar(context.Background(), Request{TimeSlot: 1})
	assert.ErrorIs(t, err, ErrInvalidChart)
}

func TestNodeProviderTimeout(t *testing.T) {
	bin := fakeNode(t, "exec sleep 5")

	start := time.Now()
	_, err := NewNodeProvider(bin, t.TempDir(), 100*time.Millisecond).BySolar(context.Background(), Request{TimeSlot: 1})
	assert.ErrorIs(t, err, ErrEngine)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestNewNodeProviderDefaults(t *testing.T) {
	p := NewNodeProvider("", ".", 0)
	assert.Equal(t, "node", p.Binary)
	assert.Equal(t, 10*time.Second, p.Timeout)
}
