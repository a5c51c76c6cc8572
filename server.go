package demo

import (
	"context"
	"net/http"
	"time"

	"voltage_wallet_demo/pkg/config"
	"voltage_wallet_demo/pkg/monitor"
)

const (
	readTimeout = 30 * time.Second

	// writeMargin covers payment creation and response encoding on top of
	// the monitoring window of a send.
	writeMargin = 30 * time.Second
)

type Server struct {
	httpServer *http.Server
}

// WriteTimeout is the time a send request may hold its response: it
// answers only after the payment settles or monitoring times out.
func WriteTimeout(mon config.Monitor) time.Duration {
	timeout := mon.Timeout
	if timeout <= 0 {
		timeout = monitor.DefaultTimeout
	}
	return timeout + writeMargin
}

// Run blocks until the server stops.
func (s *Server) Run(cfg config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:           "0.0.0.0:" + cfg.Server.Port,
		Handler:        handler,
		MaxHeaderBytes: 1 << 20,
		ReadTimeout:    readTimeout,
		WriteTimeout:   WriteTimeout(cfg.Monitor),
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
