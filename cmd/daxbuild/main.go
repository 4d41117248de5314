package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/daxbuild/internal/cmd"
	"github.com/felixgeelhaar/daxbuild/internal/exitcode"
)

func main() {
	// Cancelling the context on interrupt kills the running tool
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cmd.Dispatch(ctx, os.Args[1:], cmd.Options{})
	stop()

	exitcode.Exit(code)
}
