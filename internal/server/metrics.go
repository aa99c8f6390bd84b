package server

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	ConnectedPeers     prometheus.Gauge
	Rooms              prometheus.Gauge
	Requests           *prometheus.CounterVec
	MessagesSent       *prometheus.CounterVec
	SendFailures       prometheus.Counter
	SimulationTicks    prometheus.Counter
	RoomAvgTemperature *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConnectedPeers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "heatgrid_connected_peers",
			Help: "Number of currently connected peers.",
		}),
		Rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "heatgrid_rooms",
			Help: "Number of registered rooms.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heatgrid_requests_total",
			Help: "Dispatched requests by verb and outcome.",
		}, []string{"verb", "outcome"}),
		MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "heatgrid_messages_sent_total",
			Help: "Outbound messages by kind.",
		}, []string{"kind"}),
		SendFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "heatgrid_send_failures_total",
			Help: "Outbound writes that failed and were dropped.",
		}),
		SimulationTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "heatgrid_simulation_ticks_total",
			Help: "Completed simulation ticks across all rooms.",
		}),
		RoomAvgTemperature: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "heatgrid_room_avg_temperature",
			Help: "Mean sensor temperature per room.",
		}, []string{"room"}),
	}
	reg.MustRegister(
		m.ConnectedPeers,
		m.Rooms,
		m.Requests,
		m.MessagesSent,
		m.SendFailures,
		m.SimulationTicks,
		m.RoomAvgTemperature,
	)
	return m
}
