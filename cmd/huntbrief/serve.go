package main

import (
	"os"
	"os/signal"
	"syscall"

	"huntbrief/internal/api"
	"huntbrief/internal/config"
	"huntbrief/internal/logging"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server in this process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.APIAddr = addr
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return api.ListenAndServe(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overriding api_addr")
	return cmd
}
