package agent

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/probelab/probectl/internal/observability"
	"github.com/probelab/probectl/internal/protocol"
	"github.com/probelab/probectl/internal/sequencer"
)

var errUnhandledQuery = errors.New("agent: no handler for query")

const (
	dropReasonDecode         = "decode"
	dropReasonTruncated      = "truncated"
	dropReasonUnknownVersion = "unknown-version"
	dropReasonUnknownQuery   = "unknown-query"
	dropReasonOversize       = "oversize"
	dropReasonBudget         = "trailer-budget"
	dropReasonUnhandled      = "unhandled-query"
	dropReasonWrite          = "write-failed"
)

func (s *Server) handleDatagram(ctx context.Context, peer net.Addr, pkt []byte) {
	req, n, err := protocol.DecodeRequest(pkt)
	if err != nil {
		s.drop(peer, decodeDropReason(err), err)
		return
	}
	if len(pkt)-n > protocol.RequestTrailer {
		s.drop(peer, dropReasonOversize, nil)
		return
	}

	respLen, err := s.dispatch(ctx, req)
	if err != nil {
		reason := dropReasonUnhandled
		if errors.Is(err, protocol.ErrTrailerBudget) {
			reason = dropReasonBudget
		}
		s.drop(peer, reason, err)
		return
	}

	if _, err := s.conn.WriteTo(s.respBuf[:respLen], peer); err != nil {
		s.drop(peer, dropReasonWrite, err)
		return
	}
	s.answered.Add(1)
}

// dispatch routes req to its handler and encodes the response into respBuf,
// returning the encoded length. Every declared version and query must have a
// branch; the defaults are loud errors, never silent skips, so an unrouted
// variant surfaces the moment it is exercised.
func (s *Server) dispatch(ctx context.Context, req protocol.Request) (int, error) {
	switch r := req.(type) {
	case protocol.RequestV0:
		return s.dispatchV0(ctx, r.Query)
	default:
		return 0, fmt.Errorf("agent: no handler for request %T", req)
	}
}

func (s *Server) dispatchV0(ctx context.Context, q protocol.QueryV0) (int, error) {
	switch q {
	case protocol.QueryV0SequencerRegisters:
		return s.serveSequencerRegisters(ctx)
	default:
		return 0, fmt.Errorf("%w: %s", errUnhandledQuery, q)
	}
}

func (s *Server) serveSequencerRegisters(ctx context.Context) (int, error) {
	n, err := s.seq.ReadRegisters(ctx, s.regsBuf[:])
	outcome := seqRegsOutcome(err)
	var trailer []byte
	if outcome == protocol.SeqRegsSuccess {
		trailer = s.regsBuf[:n]
	}
	respLen, encErr := protocol.EncodeSeqRegsResponse(s.respBuf[:], outcome, trailer)
	if encErr != nil {
		return 0, encErr
	}
	observability.RecordQuery(s.name, protocol.QueryV0SequencerRegisters.String(), outcome.String())
	return respLen, nil
}

// seqRegsOutcome classifies a sequencer read into exactly one declared
// response variant. Failures stay in-band so the host can tell a lost
// datagram from an answered failure.
func seqRegsOutcome(err error) protocol.SeqRegsResponseV0 {
	switch {
	case err == nil:
		return protocol.SeqRegsSuccess
	case errors.Is(err, sequencer.ErrTaskDead):
		return protocol.SeqRegsTaskDead
	default:
		return protocol.SeqRegsReadRegsFailed
	}
}

func decodeDropReason(err error) string {
	switch {
	case errors.Is(err, protocol.ErrUnknownVersion):
		return dropReasonUnknownVersion
	case errors.Is(err, protocol.ErrUnknownQuery):
		return dropReasonUnknownQuery
	case errors.Is(err, protocol.ErrTruncated):
		return dropReasonTruncated
	default:
		return dropReasonDecode
	}
}

func (s *Server) drop(peer net.Addr, reason string, err error) {
	s.dropped.Add(1)
	observability.RecordDrop(s.name, reason)
	event := s.log.Warn()
	if reason == dropReasonBudget {
		// A budget overrun means the size constants no longer match the
		// sequencer hardware. Keep it loud.
		event = s.log.Error()
	}
	if err != nil {
		event = event.Err(err)
	}
	if peer != nil {
		event = event.Str("peer", peer.String())
	}
	event.Str("agent", s.name).Str("reason", reason).Msg("datagram dropped")
}
