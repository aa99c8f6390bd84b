package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"HeatGrid/internal/server"
)

var (
	serveAddr   string
	serveDecayK float64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the authoritative simulation server",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		cfg, err := server.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Listen = serveAddr
		}
		if cmd.Flags().Changed("decay-k") {
			cfg.DecayK = serveDecayK
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.NewApp(cfg, log).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")
	serveCmd.Flags().Float64Var(&serveDecayK, "decay-k", 0.1, "override thermal decay constant")
}
