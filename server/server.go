package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/samandartukhtayev/rawsock-users/config"
	"github.com/samandartukhtayev/rawsock-users/wire"
)

// Dispatcher answers a parsed request and names the route that served it
type Dispatcher interface {
	Dispatch(ctx context.Context, req *wire.Request) (string, wire.Response)
}

// Observer records served requests
type Observer interface {
	Observe(route string, status int, elapsed time.Duration)
}

// Server accepts one connection at a time, answers its single request and
// closes it. Requests are served strictly in arrival order.
type Server struct {
	bufferSize  int
	readTimeout time.Duration
	dispatcher  Dispatcher
	observer    Observer
	logger      *slog.Logger
}

// New creates a server; observer may be nil
func New(cfg *config.Config, d Dispatcher, observer Observer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		bufferSize:  cfg.ReadBufferSize,
		readTimeout: cfg.ReadTimeout,
		dispatcher:  d,
		observer:    observer,
		logger:      logger,
	}
}

// Serve accepts connections on ln until ctx is done. The connection being
// served when ctx is cancelled is answered before Serve returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("server listening", "addr", ln.Addr().String())

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()
	defer ln.Close()

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}

			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			s.logger.Warn("unable to accept connection", "error", err, "retry_in", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		s.serveConn(ctx, conn)
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if s.readTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			s.logger.Warn("unable to set read deadline", "error", err)
		}
	}

	buf := make([]byte, s.bufferSize)
	n, err := conn.Read(buf)
	if n == 0 && err != nil {
		s.logger.Warn("unable to read stream", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}

	start := time.Now()
	req := wire.Parse(buf[:n])
	route, resp := s.dispatch(ctx, req)
	elapsed := time.Since(start)

	if s.observer != nil {
		s.observer.Observe(route, resp.Code(), elapsed)
	}

	if _, err := conn.Write(resp.Bytes()); err != nil {
		s.logger.Warn("unable to write response", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}

	s.logger.Debug("request served",
		"method", req.Method,
		"path", req.Path,
		"route", route,
		"status", resp.Code(),
		"duration", elapsed,
	)
}

func (s *Server) dispatch(ctx context.Context, req *wire.Request) (route string, resp wire.Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while handling request", "method", req.Method, "path", req.Path, "panic", r)
			route, resp = "panic", wire.InternalError("Internal error")
		}
	}()

	return s.dispatcher.Dispatch(ctx, req)
}
