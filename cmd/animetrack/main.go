// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command animetrack is the terminal client for the AnimeTrack API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/animetrack/internal/cli"
)

func main() {
	context, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := cli.NewRootCommand(cli.NewViper(), os.Stdout)
	if err := root.ExecuteContext(context); err != nil {
		fmt.Fprintln(os.Stderr, "animetrack:", err)
		cancel()
		os.Exit(1)
	}
}
