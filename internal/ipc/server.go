package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"cask-go/internal/cask"
)

// Server answers consumer queries over a unix socket. It holds only a
// cask.AssetQuery, the capability-limited view of the broker, and can
// therefore never leak anything the broker itself would not answer.
type Server struct {
	query  cask.AssetQuery
	logger cask.Logger

	mu sync.Mutex
	ln net.Listener
	wg sync.WaitGroup
}

// NewServer creates a Server answering from query.
func NewServer(query cask.AssetQuery, logger cask.Logger) *Server {
	return &Server{query: query, logger: logger}
}

// Listen binds the socket. A stale socket file from a previous run is
// removed first; live collisions surface as bind errors.
func (s *Server) Listen(socketPath string) error {
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale socket: %w", err)
	}
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("binding query socket: %w", err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	return nil
}

// Serve accepts consumer connections until ctx is done or the listener is
// closed. Each connection may issue any number of sequential requests.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return fmt.Errorf("server is not listening")
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			s.handle(ctx, conn)
		}()
	}
}

// Close stops the listener. In-flight connections finish their current
// request.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	return ln.Close()
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			if err != io.EOF {
				s.logger.Debug("query connection closed", "error", err)
			}
			return
		}

		resp := s.answer(ctx, req)
		if err := enc.Encode(resp); err != nil {
			s.logger.Debug("writing query response", "error", err)
			return
		}
	}
}

func (s *Server) answer(ctx context.Context, req Request) Response {
	switch req.Op {
	case OpGetAssetsPath:
		path, err := s.query.AssetsPath(ctx)
		if err != nil {
			return failure(err)
		}
		return Response{OK: true, Path: path}
	case OpGetIsDevMode:
		dev, err := s.query.DevMode(ctx)
		if err != nil {
			return failure(err)
		}
		return Response{OK: true, Dev: dev}
	default:
		return Response{Error: fmt.Sprintf("unknown operation %q", req.Op)}
	}
}

func failure(err error) Response {
	return Response{Error: err.Error(), Kind: cask.ErrorKind(err)}
}
