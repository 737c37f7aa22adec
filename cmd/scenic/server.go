package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
)

// runner is satisfied by *scenic.Agent.
type runner interface {
	Run(ctx context.Context, goal string, options ...scenic.Option) (*scenic.Report, error)
}

type serverOption func(*server)

func withAddr(addr string) serverOption {
	return func(s *server) {
		s.addr = addr
	}
}

func withStore(store scenic.ReportStore) serverOption {
	return func(s *server) {
		s.store = store
	}
}

func withRunner(r runner) serverOption {
	return func(s *server) {
		s.runner = r
	}
}

// withRunOptions sets a factory of per-run options, e.g. a fresh trace recorder.
func withRunOptions(fn func() []scenic.Option) serverOption {
	return func(s *server) {
		s.runOptions = fn
	}
}

type server struct {
	addr       string
	store      scenic.ReportStore
	runner     runner
	runOptions func() []scenic.Option
	mux        *http.ServeMux
}

func newServer(opts ...serverOption) *server {
	s := &server{
		addr:       ":18900",
		runOptions: func() []scenic.Option { return nil },
		mux:        http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *server) setupRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/runs", s.handleCreateRun)
	s.mux.HandleFunc("GET /api/reports", s.handleListReports)
	s.mux.HandleFunc("GET /api/reports/{id}", s.handleGetReport)
}

func (s *server) handler() http.Handler {
	return s.mux
}

func (s *server) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return goerr.Wrap(err, "failed to listen", goerr.V("addr", s.addr))
	}

	addr := listener.Addr().String()
	slog.Info("starting scenic server", slog.String("addr", addr), slog.String("url", "http://"+addr))

	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return goerr.Wrap(err, "server error")
	}

	return nil
}
