package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"HeatGrid/internal/home"
)

// App wires registry, connection manager, dispatcher and the HTTP surface
// into one server instance. Nothing here is a singleton; tests construct as
// many independent apps as they need.
type App struct {
	cfg        Config
	log        *zap.Logger
	registry   *home.Registry
	conns      *ConnManager
	dispatcher *Dispatcher
	metrics    *Metrics
	promReg    *prometheus.Registry
}

func NewApp(cfg Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector())
	metrics := NewMetrics(promReg)

	registry := home.NewRegistry(cfg.DecayK)
	conns := NewConnManager(log, metrics)
	dispatcher := NewDispatcher(registry, conns, cfg, log, metrics)

	return &App{
		cfg:        cfg,
		log:        log,
		registry:   registry,
		conns:      conns,
		dispatcher: dispatcher,
		metrics:    metrics,
		promReg:    promReg,
	}
}

func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", a.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(a.promReg, promhttp.HandlerOpts{}))
	return mux
}

// Run serves until the context is cancelled, then shuts the listener down,
// stops every room's simulation loop and drops the remaining peers.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{Addr: a.cfg.Listen, Handler: a.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	a.log.Info("listening",
		zap.String("addr", a.cfg.Listen),
		zap.Float64("decay_k", a.cfg.DecayK),
		zap.Duration("tick_interval", a.cfg.TickInterval))

	err := srv.ListenAndServe()

	a.conns.CloseAll()
	a.dispatcher.Shutdown()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
