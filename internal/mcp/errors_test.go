package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scerrors "github.com/Aman-CERP/sessionctx/internal/errors"
)

func TestMapError_NilError(t *testing.T) {
	assert.Nil(t, MapError(nil))
}

func TestMapError_SessionErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"corrupt", scerrors.CorruptError("/tmp/x.json", errors.New("bad")), ErrCodeStateCorrupt},
		{"disk full", scerrors.New(scerrors.ErrCodeDiskFull, "no space", nil), ErrCodeStorageFailed},
		{"permission", scerrors.New(scerrors.ErrCodeFilePermission, "denied", nil), ErrCodeStorageFailed},
		{"lock", scerrors.New(scerrors.ErrCodeLockFailed, "busy", nil), ErrCodeStorageFailed},
		{"not found", scerrors.New(scerrors.ErrCodeFileNotFound, "gone", nil), ErrCodeNotFound},
		{"validation", scerrors.ValidationError("bad input", nil), ErrCodeInvalidParams},
		{"invalid path", scerrors.New(scerrors.ErrCodeInvalidPath, "bad id", nil), ErrCodeInvalidParams},
		{"config", scerrors.New(scerrors.ErrCodeConfigInvalid, "bad config", nil), ErrCodeInternalError},
		{"internal", scerrors.New(scerrors.ErrCodeInternal, "boom", nil), ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
		})
	}
}

func TestMapError_SuggestionIncluded(t *testing.T) {
	// Given: a corrupt-state error carrying a suggestion
	err := scerrors.CorruptError("/tmp/x.json", errors.New("bad"))

	// When: mapped
	got := MapError(err)

	// Then: the message keeps both parts
	assert.Contains(t, got.Message, "malformed state file /tmp/x.json")
	assert.Contains(t, got.Message, "inspect or remove the file")
}

func TestMapError_WrappedSessionError(t *testing.T) {
	err := fmt.Errorf("reading handoff: %w", scerrors.CorruptError("/tmp/x.json", nil))
	assert.Equal(t, ErrCodeStateCorrupt, MapError(err).Code)
}

func TestMapError_ContextErrors(t *testing.T) {
	assert.Equal(t, ErrCodeTimeout, MapError(context.DeadlineExceeded).Code)
	assert.Equal(t, ErrCodeTimeout, MapError(context.Canceled).Code)
}

func TestMapError_Sentinels(t *testing.T) {
	assert.Equal(t, ErrCodeMethodNotFound, MapError(ErrToolNotFound).Code)
	assert.Equal(t, ErrCodeInvalidParams, MapError(ErrInvalidParams).Code)
}

func TestMapError_UnknownError(t *testing.T) {
	got := MapError(errors.New("something odd"))
	assert.Equal(t, ErrCodeInternalError, got.Code)
	assert.Equal(t, "Internal server error.", got.Message)
}

func TestMapError_MCPErrorPassesThrough(t *testing.T) {
	orig := NewInvalidParamsError("limit must not be negative")
	assert.Same(t, orig, MapError(orig))
}

func TestMCPError_Error(t *testing.T) {
	err := &MCPError{Code: ErrCodeInvalidParams, Message: "bad"}
	assert.Equal(t, "MCP error -32602: bad", err.Error())
}

func TestNewMethodNotFoundError(t *testing.T) {
	err := NewMethodNotFoundError("search")
	assert.Equal(t, ErrCodeMethodNotFound, err.Code)
	assert.Equal(t, "Tool 'search' not found.", err.Message)
}
