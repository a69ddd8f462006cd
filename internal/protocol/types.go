package protocol

import "fmt"

// Version is the envelope discriminant, carried as the first byte of every
// encoded request. Versions are append-only: a shipped ordinal is never
// reused or reordered, and decoders reject tags they were not built for.
type Version uint8

const (
	// V0 is the initial protocol version.
	V0 Version = iota

	versionCount
)

func (v Version) String() string {
	switch v {
	case V0:
		return "v0"
	default:
		return fmt.Sprintf("version(%d)", uint8(v))
	}
}

// Request is the envelope for every query a host can issue: a version tag
// followed by that version's query encoding. The interface is sealed so the
// declared variants form a closed set and dispatch stays exhaustive.
type Request interface {
	version() Version
}

// RequestV0 is the version-0 envelope variant.
type RequestV0 struct {
	Query QueryV0
}

func (RequestV0) version() Version { return V0 }

var _ Request = RequestV0{}

// QueryV0 identifies one query understood under version 0. Ordinals follow
// declaration order under the same append-only rule as Version.
type QueryV0 uint8

const (
	// QueryV0SequencerRegisters asks the agent to read the sequencer register
	// image and return it raw.
	QueryV0SequencerRegisters QueryV0 = iota

	queryV0Count
)

func (q QueryV0) String() string {
	switch q {
	case QueryV0SequencerRegisters:
		return "sequencer-registers"
	default:
		return fmt.Sprintf("query(%d)", uint8(q))
	}
}

// SeqRegsResponseV0 is the outcome of a QueryV0SequencerRegisters exchange.
// Operational failures are in-band variants rather than errors so a host can
// tell "no answer" from "answered: the read failed".
type SeqRegsResponseV0 uint8

const (
	// SeqRegsSuccess means the register image follows as the trailer. The
	// leading trailer bytes carry the sequencer revision tag.
	SeqRegsSuccess SeqRegsResponseV0 = iota

	// SeqRegsTaskDead means the sequencer task is not running.
	SeqRegsTaskDead

	// SeqRegsReadRegsFailed means the task is up but the register read failed.
	SeqRegsReadRegsFailed

	seqRegsResponseV0Count
)

func (r SeqRegsResponseV0) String() string {
	switch r {
	case SeqRegsSuccess:
		return "success"
	case SeqRegsTaskDead:
		return "sequencer-task-dead"
	case SeqRegsReadRegsFailed:
		return "sequencer-read-regs-failed"
	default:
		return fmt.Sprintf("response(%d)", uint8(r))
	}
}
