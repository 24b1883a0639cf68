package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openkraft/excess/internal/adapters/inbound/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err == nil {
		return
	}

	var ee *cli.ExitError
	if !errors.As(err, &ee) {
		ee = &cli.ExitError{Code: cli.ExitFailure, Err: err}
	}
	if ee.Err != nil {
		fmt.Fprintln(os.Stderr, "excess:", ee.Err)
	}
	os.Exit(ee.Code)
}
