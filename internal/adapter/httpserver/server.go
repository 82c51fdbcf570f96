package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"storefront/internal/worker"
)

// Server owns the listening socket and the accept loop. Each accepted
// connection is handed to the worker pool, which runs exactly one
// parse → route → respond cycle before closing it. Connections carry no
// read or write deadline; a production hardening pass would add one per
// connection.
type Server struct {
	addr     string
	router   *Router
	pool     *worker.Pool
	logger   *slog.Logger
	listener net.Listener
}

func NewServer(addr string, router *Router, pool *worker.Pool, logger *slog.Logger) *Server {
	return &Server{addr: addr, router: router, pool: pool, logger: logger}
}

// Listen binds the configured address. Kept separate from Serve so the
// caller can fail fast on a bad port and read back the bound address.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.addr, err)
	}
	s.listener = listener
	return nil
}

// Addr reports the bound address; valid after Listen.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve runs the accept loop until ctx is cancelled. Cancellation closes
// the listening socket to unblock Accept, and the resulting accept error
// is a normal exit, not a failure.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		if err := s.listener.Close(); err != nil {
			s.logger.Error("closing listener", "error", err)
		}
	}()

	s.logger.Info("server listening", "addr", s.Addr())

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		if tcp, ok := conn.(*net.TCPConn); ok {
			tcp.SetNoDelay(true)
		}

		if !s.pool.Submit(func() { s.handleConn(conn) }) {
			conn.Close()
			return nil
		}
	}
}

// handleConn runs under its own context, not the accept loop's. Shutdown
// cancels the loop before the pool drains, and a connection already
// queued at that point must still be served to completion.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	ctx := context.Background()

	requestID := uuid.NewString()
	start := time.Now()

	req, err := ReadRequest(conn)
	if err != nil {
		// Protocol errors get no response; the connection just drops.
		s.logger.Debug("dropping connection",
			"request_id", requestID,
			"remote", conn.RemoteAddr().String(),
			"error", err,
		)
		return
	}

	resp := s.router.Route(ctx, req)
	if err := writeResponse(conn, resp); err != nil {
		s.logger.Debug("response write failed", "request_id", requestID, "error", err)
		return
	}

	s.logger.Info("request handled",
		"request_id", requestID,
		"method", req.Method,
		"path", req.Path,
		"status", resp.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
