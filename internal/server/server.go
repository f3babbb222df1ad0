// Package server implements the line-oriented TCP request layer: it
// accepts connections, reads newline-terminated request lines, and writes
// back OK:<message> / ERROR:<message> responses from the key-value
// facade. One goroutine serves each connection, grounded on the original
// tcp_server/tcp_connection's one-thread-per-connection model.
package server

import (
	"bufio"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/finch-db/finchdb/internal/kv"
)

// Server listens on a TCP port and dispatches each line to facade.
type Server struct {
	facade *kv.Facade
	logger *zap.SugaredLogger
}

// New constructs a Server over facade.
func New(facade *kv.Facade, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{facade: facade, logger: logger}
}

// ListenAndServe binds addr and serves connections until the listener is
// closed or Accept returns a permanent error.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close()

	s.logger.Infow("listening", "addr", addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		status, message := s.facade.RequestHandler(line)
		if _, err := fmt.Fprintf(conn, "%s:%s\n", status, message); err != nil {
			s.logger.Debugw("write failed, dropping connection", "error", err)
			return
		}
	}
}
