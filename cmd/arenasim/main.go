package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/vkngwrapper/wordarena/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.New().Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "arenasim: %v\n", err)
		return 1
	}
	return 0
}
