package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTTY_NonFileWriter(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
}

func TestIsInteractive_NonFileReader(t *testing.T) {
	// Given: piped-style input that is not a terminal
	r := strings.NewReader(`{"tool_name":"Write"}`)

	// Then: it is not interactive
	assert.False(t, IsInteractive(r))
	assert.False(t, IsInteractive(nil))
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}

func TestUseColor_BufferNeverColored(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.False(t, UseColor(&bytes.Buffer{}))
}
