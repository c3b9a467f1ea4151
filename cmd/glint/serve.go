package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/glint-ui/glint/pkg/server"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built-in demo page",
		Long: `Start an HTTP server hosting the demo page with live updates
over WebSocket. Useful for verifying an installation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := server.New(&server.Config{Address: addr})
			s.Handle("/", welcomePage, server.WithTitle("Glint"))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			info("serving on %s", addr)
			info("press Ctrl+C to stop")
			return s.Start(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Listen address")

	return cmd
}
