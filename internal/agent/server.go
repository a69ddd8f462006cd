// Package agent runs the device-side inspection responder: a datagram server
// that answers versioned queries with fixed-size responses, plus the admin
// HTTP surface next to it.
package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	reuseport "github.com/kavu/go_reuseport"
	"github.com/rs/zerolog"

	"github.com/probelab/probectl/internal/observability"
	"github.com/probelab/probectl/internal/protocol"
	"github.com/probelab/probectl/internal/sequencer"
)

var (
	ErrAlreadyListening = errors.New("agent: already listening")
	ErrNoSequencer      = errors.New("agent: sequencer reader required")
)

// Options configures an agent Server.
type Options struct {
	Name      string
	Addr      string
	Reuseport bool
	Sequencer sequencer.Reader
	Log       zerolog.Logger
}

// Server answers inspection queries over a datagram socket. One datagram is
// handled to completion before the next is read, so the fixed buffers below
// are never shared.
type Server struct {
	name  string
	addr  string
	reuse bool
	seq   sequencer.Reader
	log   zerolog.Logger

	conn net.PacketConn

	answered atomic.Uint64
	dropped  atomic.Uint64

	// reqBuf has one spare byte so an oversize datagram shows up as a length
	// past the request budget instead of a silent short read.
	reqBuf  [protocol.RequestMaxSize + protocol.RequestTrailer + 1]byte
	respBuf [protocol.AnyResponseV0MaxSize]byte
	// regsBuf has one spare byte so a driver that overruns the trailer
	// budget is caught rather than capped at exactly the budget.
	regsBuf [protocol.SeqRegsResponseV0Trailer + 1]byte
}

func New(opts Options) *Server {
	return &Server{
		name:  opts.Name,
		addr:  opts.Addr,
		reuse: opts.Reuseport,
		seq:   opts.Sequencer,
		log:   opts.Log,
	}
}

// Listen binds the datagram socket. The reuseport bind lets a replacement
// agent take over the port during rolling restarts.
func (s *Server) Listen() error {
	if s.conn != nil {
		return ErrAlreadyListening
	}
	if s.seq == nil {
		return ErrNoSequencer
	}
	var (
		conn net.PacketConn
		err  error
	)
	if s.reuse {
		conn, err = reuseport.ListenPacket("udp", s.addr)
	} else {
		conn, err = net.ListenPacket("udp", s.addr)
	}
	if err != nil {
		return fmt.Errorf("agent: listen %s: %w", s.addr, err)
	}
	s.conn = conn
	return nil
}

// LocalAddr reports the bound address, nil before Listen.
func (s *Server) LocalAddr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Serve handles datagrams until ctx is cancelled. Each exchange is atomic
// from the transport's point of view: decode, dispatch, encode, reply.
// Datagrams that fail decode get no reply; the host's retry policy owns that
// case. Serve returns nil on clean shutdown.
func (s *Server) Serve(ctx context.Context) error {
	if s.conn == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	observability.RegisterMetrics()

	stop := context.AfterFunc(ctx, func() { _ = s.conn.Close() })
	defer stop()

	s.log.Info().
		Str("agent", s.name).
		Str("addr", s.conn.LocalAddr().String()).
		Msg("agent listening")

	for {
		n, peer, err := s.conn.ReadFrom(s.reqBuf[:])
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("agent: read: %w", err)
		}
		s.handleDatagram(ctx, peer, s.reqBuf[:n])
	}
}

// Stats reports how many datagrams were answered and how many were dropped
// since the server started.
func (s *Server) Stats() (answered, dropped uint64) {
	return s.answered.Load(), s.dropped.Load()
}

// Close releases the socket. Safe after Serve has already closed it.
func (s *Server) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("agent: close: %w", err)
	}
	return nil
}
