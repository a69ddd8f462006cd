package protocol

// Structured field widths of the version-0 wire forms. Discriminants use the
// smallest integer width that holds each variant count, one byte today.
const (
	versionSize           = 1
	queryV0Size           = 1
	seqRegsResponseV0Size = 1
)

const (
	// RequestMaxSize is the widest structured request encoding across all
	// declared versions: the version tag plus the widest query encoding.
	RequestMaxSize = versionSize + queryV0Size

	// QueryV0Trailer is the largest request trailer any version-0 query may
	// carry. No current query carries one.
	QueryV0Trailer = 0

	// RequestTrailer is the largest request trailer across all versions.
	RequestTrailer = QueryV0Trailer

	// SeqRegsResponseV0Trailer caps the raw register image attached to a
	// SeqRegsSuccess response. Sized for the largest register set any known
	// sequencer revision exposes; it moves in lockstep with the hardware.
	SeqRegsResponseV0Trailer = 64

	// AnyResponseV0MaxSize is the receive buffer size that fits any version-0
	// response regardless of which query produced it. It must equal
	// MaxResponseSizeV0; a test pins the two together so a stale constant
	// fails in CI instead of truncating on the wire.
	AnyResponseV0MaxSize = seqRegsResponseV0Size + SeqRegsResponseV0Trailer
)

// responseBudgetV0 bounds one query's response encoding: the widest
// structured portion and the trailer cap that rides after it.
type responseBudgetV0 struct {
	structured int
	trailer    int
}

// responseBudgetsV0 is indexed by QueryV0. Every declared query must have an
// entry; adding a query without one fails the coverage test.
var responseBudgetsV0 = [queryV0Count]responseBudgetV0{
	QueryV0SequencerRegisters: {structured: seqRegsResponseV0Size, trailer: SeqRegsResponseV0Trailer},
}

// MaxResponseSizeV0 derives the widest total response size over every
// declared version-0 query, taking each query's structured maximum plus its
// own trailer cap.
func MaxResponseSizeV0() int {
	widest := 0
	for _, b := range responseBudgetsV0 {
		if total := b.structured + b.trailer; total > widest {
			widest = total
		}
	}
	return widest
}

// ResponseTrailerBudgetV0 returns the response trailer cap for q, 0 for
// queries outside the declared range.
func ResponseTrailerBudgetV0(q QueryV0) int {
	if q >= queryV0Count {
		return 0
	}
	return responseBudgetsV0[q].trailer
}
