// Package main provides the entry point for the sessionctx CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/sessionctx/cmd/sessionctx/cmd"
	scerrors "github.com/Aman-CERP/sessionctx/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, scerrors.FormatForCLI(err))
		os.Exit(1)
	}
}
