package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server HTTP сервер метрик Prometheus
type Server struct {
	addr      string
	path      string
	collector *Collector
	logger    logrus.FieldLogger
	server    *http.Server
	listener  net.Listener
}

// NewServer создает сервер метрик
func NewServer(addr, path string, collector *Collector, logger logrus.FieldLogger) *Server {
	if path == "" {
		path = "/metrics"
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Server{
		addr:      addr,
		path:      path,
		collector: collector,
		logger:    logger.WithField("component", "metrics"),
	}
}

// Start начинает обслуживать метрики в отдельной горутине
func (s *Server) Start(ctx context.Context) error {
	if s.collector == nil {
		return errors.New("metrics server: no collector")
	}

	mux := http.NewServeMux()
	mux.Handle(s.path, promhttp.HandlerFor(s.collector.Registry(), promhttp.HandlerOpts{}))

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("metrics server listen %s: %w", s.addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.WithFields(logrus.Fields{"addr": ln.Addr().String(), "path": s.path}).Info("starting metrics server")

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("metrics server error")
		}
	}()
	return nil
}

// Addr адрес, на котором слушает сервер
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown failed: %w", err)
	}
	s.logger.Info("metrics server stopped")
	return nil
}
