package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/ardnew/brewin/cli"
	"github.com/ardnew/brewin/cli/cmd"
	"github.com/ardnew/brewin/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		var perr *cmd.ProgramError
		if errors.As(err, &perr) {
			fmt.Fprintln(os.Stderr, perr.Excerpt())
		} else {
			log.Error(
				"run failed",
				slog.Any("error", err),
			) // slog automatically uses LogValue()
		}

		os.Exit(1)
	}
}
