// Command convene resolves and records convention orderings.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/convene/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}

	// Commands print their own diagnostics; bare errors come from cobra itself
	// (unknown flags, bad arguments) and still need reporting.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, err)
	} else if exitErr.Code == cli.ExitCommandError {
		fmt.Fprintln(os.Stderr, exitErr.Error())
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
