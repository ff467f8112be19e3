package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/shoplog/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands render their own errors and wrap them with an exit
		// code; anything else is a flag or usage problem.
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.ExitCommandError)
	}
}
