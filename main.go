package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/thenoetrevino/dealboard/cmd"
	"github.com/thenoetrevino/dealboard/internal/cli"
)

func main() {
	err := cmd.Execute()

	// ExitErrors were already reported by the command's formatter
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.ExitCode(err))
}
