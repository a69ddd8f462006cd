// Package host implements the management-side query client: one connected
// datagram socket per agent, blocking exchanges, retry policy layered above
// the wire contract.
package host

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/probelab/probectl/internal/protocol"
)

var (
	ErrNoReply       = errors.New("host: no reply from agent")
	ErrTargetMissing = errors.New("host: target address required")
)

// Options configures a Client.
type Options struct {
	// Target is the agent's datagram address, host:port.
	Target string
	// Timeout bounds a single request/reply attempt.
	Timeout time.Duration
	// Attempts is the total number of sends before giving up.
	Attempts int
	Backoff  BackoffConfig
	Log      zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 1 * time.Second
	}
	if o.Attempts <= 0 {
		o.Attempts = 3
	}
	if o.Backoff == (BackoffConfig{}) {
		o.Backoff = DefaultBackoff()
	}
	return o
}

// SeqRegsResult is a decoded sequencer-registers answer. A failure Outcome
// is a definitive answer from the agent, not a transport problem.
type SeqRegsResult struct {
	Outcome   protocol.SeqRegsResponseV0
	Revision  byte
	Registers []byte
}

// Client issues inspection queries to one agent. The socket is connected, so
// the kernel discards datagrams from anyone but the dialed agent. Exchanges
// are sequential; a Client is not for concurrent use.
type Client struct {
	opts Options
	conn *net.UDPConn
	rng  *rand.Rand
	log  zerolog.Logger

	reqBuf [protocol.RequestMaxSize]byte
	// respBuf has one spare byte so an over-budget reply fails decode
	// instead of being silently truncated at the budget.
	respBuf [protocol.AnyResponseV0MaxSize + 1]byte
}

func Dial(opts Options) (*Client, error) {
	opts = opts.withDefaults()
	if opts.Target == "" {
		return nil, ErrTargetMissing
	}
	raddr, err := net.ResolveUDPAddr("udp", opts.Target)
	if err != nil {
		return nil, fmt.Errorf("host: resolve %s: %w", opts.Target, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("host: dial %s: %w", opts.Target, err)
	}
	return &Client{
		opts: opts,
		conn: conn,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		log:  opts.Log,
	}, nil
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// SequencerRegisters asks the agent for its sequencer register image. Lost
// and undecodable replies are retried with jittered backoff; a structurally
// valid reply is returned as-is, failure outcomes included, without retry.
func (c *Client) SequencerRegisters(ctx context.Context) (SeqRegsResult, error) {
	n, err := protocol.EncodeRequest(c.reqBuf[:], protocol.RequestV0{Query: protocol.QueryV0SequencerRegisters})
	if err != nil {
		return SeqRegsResult{}, err
	}
	req := c.reqBuf[:n]

	var lastErr error
	for attempt := 1; attempt <= c.opts.Attempts; attempt++ {
		if attempt > 1 {
			delay := NextBackoffDelay(c.opts.Backoff, attempt-1, c.rng)
			select {
			case <-ctx.Done():
				return SeqRegsResult{}, ctx.Err()
			case <-time.After(delay):
			}
		}

		res, err := c.exchange(ctx, req)
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return SeqRegsResult{}, ctx.Err()
		}
		lastErr = err
		c.log.Warn().
			Err(err).
			Int("attempt", attempt).
			Str("target", c.opts.Target).
			Msg("exchange failed")
	}
	return SeqRegsResult{}, fmt.Errorf("%w after %d attempts: %v", ErrNoReply, c.opts.Attempts, lastErr)
}

func (c *Client) exchange(ctx context.Context, req []byte) (SeqRegsResult, error) {
	deadline := time.Now().Add(c.opts.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return SeqRegsResult{}, fmt.Errorf("host: set deadline: %w", err)
	}

	if _, err := c.conn.Write(req); err != nil {
		return SeqRegsResult{}, fmt.Errorf("host: send: %w", err)
	}

	n, err := c.conn.Read(c.respBuf[:])
	if err != nil {
		return SeqRegsResult{}, fmt.Errorf("host: await reply: %w", err)
	}

	outcome, trailer, err := protocol.DecodeSeqRegsResponse(c.respBuf[:n])
	if err != nil {
		// Same as a lost reply; the next attempt may get a clean one.
		return SeqRegsResult{}, fmt.Errorf("host: reply: %w", err)
	}

	res := SeqRegsResult{Outcome: outcome}
	if outcome == protocol.SeqRegsSuccess && len(trailer) > 0 {
		res.Revision = trailer[0]
		res.Registers = append([]byte(nil), trailer...)
	}
	return res, nil
}
