package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/verskeep/internal/command"
	_ "github.com/keshon/verskeep/internal/command/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := command.Execute(ctx, os.Args[1:], command.DefaultStreams())
	stop()
	os.Exit(code)
}
