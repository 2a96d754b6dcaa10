// Package configs provides the embedded configuration template written by
// `sessionctx config init`.
package configs

import _ "embed"

// ConfigTemplate is the commented default configuration (JSON with comments).
//
//go:embed config.example.jsonc
var ConfigTemplate string
