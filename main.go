package main

import (
	"fmt"
	"os"

	"github.com/penwyp/go-codex-trace/commands"
	coreerrors "github.com/penwyp/go-codex-trace/internal/core/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := coreerrors.HintOf(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(coreerrors.ExitCode(err))
	}
}
