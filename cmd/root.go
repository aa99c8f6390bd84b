package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "heatgrid",
	Short: "Multi-client smart-home heat simulator",
	Long: `HeatGrid runs an authoritative smart-home server that continuously
simulates heat diffusion in rooms of heaters and sensors, and keeps any
number of websocket clients eventually consistent with that state.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/server.yaml", "path to yaml config")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}

func newLogger() (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
