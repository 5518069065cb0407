package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/opensandbox/hdfsh/cmd/hdfsh/cmd"
	"github.com/opensandbox/hdfsh/pkg/types"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, types.Render(err))
		os.Exit(1)
	}
}
