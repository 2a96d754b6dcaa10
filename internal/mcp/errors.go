// Package mcp implements the Model Context Protocol (MCP) server for sessionctx.
package mcp

import (
	"context"
	"errors"
	"fmt"

	scerrors "github.com/Aman-CERP/sessionctx/internal/errors"
)

// Custom MCP error codes for sessionctx.
const (
	// ErrCodeStateCorrupt indicates a persisted record could not be decoded.
	ErrCodeStateCorrupt = -32001

	// ErrCodeStorageFailed indicates a record could not be written or locked.
	ErrCodeStorageFailed = -32002

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// ErrCodeNotFound indicates the requested record does not exist.
	ErrCodeNotFound = -32004

	// Standard JSON-RPC error codes.
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Sentinel errors for internal use.
var (
	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidParams indicates invalid parameters were provided.
	ErrInvalidParams = errors.New("invalid parameters")
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var se *scerrors.SessionError
	if errors.As(err, &se) {
		return mapSessionError(se)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request timed out."}
	case errors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "Request was canceled."}
	case errors.Is(err, ErrToolNotFound):
		return &MCPError{Code: ErrCodeMethodNotFound, Message: "Tool not found."}
	case errors.Is(err, ErrInvalidParams):
		return &MCPError{Code: ErrCodeInvalidParams, Message: "Invalid parameters."}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: "Internal server error."}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

func mapSessionError(se *scerrors.SessionError) *MCPError {
	message := se.Message
	if se.Suggestion != "" {
		message = fmt.Sprintf("%s (%s)", se.Message, se.Suggestion)
	}

	switch se.Category {
	case scerrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	case scerrors.CategoryIO:
		switch se.Code {
		case scerrors.ErrCodeFileCorrupt:
			return &MCPError{Code: ErrCodeStateCorrupt, Message: message}
		case scerrors.ErrCodeFileNotFound:
			return &MCPError{Code: ErrCodeNotFound, Message: message}
		default:
			return &MCPError{Code: ErrCodeStorageFailed, Message: message}
		}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
