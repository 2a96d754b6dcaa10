// Package logging provides opt-in file logging with rotation for sessionctx.
//
// Hooks and the MCP server share stdout/stderr with the host tool, so logs
// never go to either. Without --debug the default logger discards
// everything; with --debug JSON logs are written to
// ~/.session-context/logs/sessionctx.log.
package logging
