package agent

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/probelab/probectl/internal/sequencer"
)

// ServiceOptions configures the standalone probed runtime. An empty
// AdminAddr leaves the admin surface off; an empty AdminToken leaves its
// metrics route open.
type ServiceOptions struct {
	Name              string
	ListenAddr        string
	AdminAddr         string
	AdminToken        string
	Reuseport         bool
	Sequencer         sequencer.Reader
	HeartbeatInterval time.Duration
	Log               zerolog.Logger
}

func (o ServiceOptions) withDefaults() ServiceOptions {
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 30 * time.Second
	}
	return o
}

// Service runs the datagram responder and the optional admin surface as one
// process lifecycle.
type Service struct {
	opts   ServiceOptions
	server *Server
	admin  *Admin
}

func NewService(opts ServiceOptions) (*Service, error) {
	opts = opts.withDefaults()
	if opts.Sequencer == nil {
		return nil, ErrNoSequencer
	}
	svc := &Service{
		opts: opts,
		server: New(Options{
			Name:      opts.Name,
			Addr:      opts.ListenAddr,
			Reuseport: opts.Reuseport,
			Sequencer: opts.Sequencer,
			Log:       opts.Log,
		}),
	}
	if strings.TrimSpace(opts.AdminAddr) != "" {
		svc.admin = NewAdmin(opts.Name, opts.AdminAddr, opts.AdminToken, opts.Log)
	}
	return svc, nil
}

// Server exposes the datagram responder, mainly for tests.
func (s *Service) Server() *Server {
	return s.server
}

// Run blocks until a termination signal arrives or a component fails.
func (s *Service) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := s.server.Listen(); err != nil {
		return err
	}
	return s.serve(ctx)
}

// serve supervises the component goroutines and emits a periodic heartbeat
// with the answered/dropped counters. A drained error channel is set to nil
// so its case drops out of the select.
func (s *Service) serve(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() { serverErr <- s.server.Serve(ctx) }()

	var adminErr chan error
	if s.admin != nil {
		adminErr = make(chan error, 1)
		go func() { adminErr <- s.admin.Serve(ctx) }()
		s.opts.Log.Info().
			Str("agent", s.opts.Name).
			Str("addr", s.opts.AdminAddr).
			Msg("admin listening")
	} else {
		s.opts.Log.Info().Str("agent", s.opts.Name).Msg("admin surface disabled")
	}

	ticker := time.NewTicker(s.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.opts.Log.Info().Str("agent", s.opts.Name).Msg("agent shutting down")
			var err error
			if serverErr != nil {
				err = <-serverErr
			}
			if adminErr != nil {
				err = multierr.Append(err, <-adminErr)
			}
			return err
		case err := <-serverErr:
			serverErr = nil
			if err != nil {
				return err
			}
		case err := <-adminErr:
			adminErr = nil
			if err != nil {
				return err
			}
		case <-ticker.C:
			answered, dropped := s.server.Stats()
			s.opts.Log.Info().
				Str("agent", s.opts.Name).
				Uint64("answered", answered).
				Uint64("dropped", dropped).
				Msg("agent heartbeat")
		}
	}
}
