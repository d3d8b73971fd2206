// Package fakeserver is an in-process tracker/storage test double. Real
// FastDFS speaks a raw TCP framing, not HTTP, so unlike the teacher's
// httptest-based fixtures (transport/stream_bundle_test.go) this listens on
// a plain net.Listener and drives the same wire.Header framing the real
// Connection does — close enough to the wire that conn.Connection cannot
// tell it apart from a real tracker or storage node.
package fakeserver

import (
	"io"
	"net"
	"sync"

	"github.com/fastdfs-go/fastdfs/wire"
)

// Response is what a Handler returns for one request.
type Response struct {
	Status uint8
	Body   []byte
}

// Handler answers one request body for a given command code.
type Handler func(body []byte) Response

// Server is a single fake tracker or storage endpoint. Handlers not present
// in the map are answered with StatusOK and an empty body, which is enough
// for commands a given test doesn't care about.
type Server struct {
	ln net.Listener

	mu       sync.Mutex
	handlers map[byte]Handler

	wg sync.WaitGroup
}

// New starts a Server on an ephemeral localhost port and begins accepting
// connections in the background.
func New(handlers map[byte]Handler) (*Server, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	s := &Server{ln: ln, handlers: handlers}
	s.wg.Add(1)
	go s.serve()
	return s, nil
}

// Addr is the "host:port" a Client's Config.Trackers (or the endpoint a
// fake tracker hands back) should point at.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// SetHandler installs or replaces the handler for one command, for tests
// that need to change behavior mid-run (e.g. simulate a failure on the
// second call).
func (s *Server) SetHandler(cmd byte, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers == nil {
		s.handlers = map[byte]Handler{}
	}
	s.handlers[cmd] = h
}

func (s *Server) handlerFor(cmd byte) Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handlers[cmd]
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go s.handleConn(c)
	}
}

func (s *Server) handleConn(c net.Conn) {
	defer s.wg.Done()
	defer c.Close()
	for {
		var hb [wire.HeaderLen]byte
		if _, err := io.ReadFull(c, hb[:]); err != nil {
			return
		}
		hdr, err := wire.DecodeHeader(hb[:])
		if err != nil {
			return
		}
		body := make([]byte, hdr.Length)
		if hdr.Length > 0 {
			if _, err := io.ReadFull(c, body); err != nil {
				return
			}
		}

		h := s.handlerFor(hdr.Command)
		var resp Response
		if h != nil {
			resp = h(body)
		}

		out := wire.Header{Length: uint64(len(resp.Body)), Command: hdr.Command, Status: resp.Status}
		enc := out.Encode()
		if _, err := c.Write(enc[:]); err != nil {
			return
		}
		if len(resp.Body) > 0 {
			if _, err := c.Write(resp.Body); err != nil {
				return
			}
		}
	}
}

// Close stops accepting new connections and waits for in-flight ones to
// finish draining.
func (s *Server) Close() error {
	err := s.ln.Close()
	s.wg.Wait()
	return err
}

// Unreachable returns an address nothing is listening on, for tracker
// failover tests — spec.md §8 "tracker failover on connect".
func Unreachable() string {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "127.0.0.1:1"
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}
