package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"HeatGrid/internal/client"
	"HeatGrid/internal/protocol"
)

var (
	watchURL    string
	watchRetry  time.Duration
	watchFollow bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Mirror the server state and print change events",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		c := client.New(watchURL, watchRetry, log)

		release := c.Cache.OnEvent(func(ev client.Event) {
			switch e := ev.(type) {
			case client.RoomAdded:
				log.Info("room added",
					zap.String("room", e.Room.ID.String()),
					zap.String("name", e.Room.Name))
				if watchFollow {
					c.Send(&protocol.SubscribeRoomTemperatureRequest{RoomID: e.Room.ID})
				}
			case client.RoomRemoved:
				log.Info("room removed", zap.String("room", e.RoomID.String()))
			case client.HeaterAdded:
				log.Info("heater added",
					zap.String("room", e.RoomID.String()),
					zap.String("heater", e.Heater.ID.String()),
					zap.Float64("temperature", e.Heater.Temperature),
					zap.Bool("on", e.Heater.On))
			case client.HeaterRemoved:
				log.Info("heater removed", zap.String("heater", e.HeaterID.String()))
			case client.SensorAdded:
				log.Info("sensor added",
					zap.String("room", e.RoomID.String()),
					zap.String("sensor", e.Sensor.ID.String()))
			case client.SensorRemoved:
				log.Info("sensor removed", zap.String("sensor", e.SensorID.String()))
			case client.TemperatureChanged:
				log.Info("temperature changed",
					zap.String("device", e.DeviceID.String()),
					zap.Float64("last", e.Last),
					zap.Float64("new", e.New))
			case client.PositionChanged:
				log.Info("position changed",
					zap.String("device", e.DeviceID.String()),
					zap.Float64("x", e.New.X),
					zap.Float64("y", e.New.Y))
			case client.EnableChanged:
				log.Info("enable changed",
					zap.String("heater", e.HeaterID.String()),
					zap.Bool("on", e.New))
			}
		})
		defer release()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchURL, "url", "ws://localhost:8080/ws", "server websocket endpoint")
	watchCmd.Flags().DurationVar(&watchRetry, "retry", client.DefaultRetryInterval, "reconnect interval")
	watchCmd.Flags().BoolVar(&watchFollow, "follow", false, "subscribe to every room's temperature feed")
}
