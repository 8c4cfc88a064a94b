package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/dwallet-labs/dwallet-network-sub008/module/component"
	"github.com/dwallet-labs/dwallet-network-sub008/module/irrecoverable"
)

const shutdownTimeout = 5 * time.Second

// Server is the http server that serves the /metrics endpoint for prometheus
// and, optionally, the pprof endpoints.
type Server struct {
	*component.ComponentManager
	server *http.Server
	log    zerolog.Logger
}

// NewServer creates a server listening on addr. Metrics are read from gatherer.
func NewServer(log zerolog.Logger, addr string, gatherer prometheus.Gatherer, enableProfilerEndpoint bool) *Server {
	mux := http.NewServeMux()
	endpoint := "/metrics"
	mux.Handle(endpoint, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	if enableProfilerEndpoint {
		mux.Handle("/debug/pprof/", http.DefaultServeMux)
	}

	m := &Server{
		server: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
		log:    log.With().Str("component", "metrics_server").Str("address", addr).Logger(),
	}
	m.ComponentManager = component.NewComponentManagerBuilder().
		AddWorker(m.serve).
		Build()
	return m
}

func (m *Server) serve(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	listener, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		ctx.Throw(err)
		return
	}
	m.log.Info().Msg("metrics server started")
	ready()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = m.server.Shutdown(shutdownCtx)
	}()

	err = m.server.Serve(listener)
	// http.ErrServerClosed is returned after Shutdown, which is a clean exit
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		m.log.Err(err).Msg("metrics server stopped unexpectedly")
		return
	}
	m.log.Debug().Msg("metrics server shutdown")
}
