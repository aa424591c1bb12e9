package main

import (
	"context"
	"os"

	"finassist/internal/cli"
)

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	code := cli.Execute(ctx, cli.NewRootCommand(cli.DefaultAppFactory(os.Stderr)), os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}
