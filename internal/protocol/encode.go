package protocol

// EncodeRequest writes req's structured encoding into dst and returns the
// byte count. dst needs at most RequestMaxSize bytes; nothing is allocated.
func EncodeRequest(dst []byte, req Request) (int, error) {
	switch r := req.(type) {
	case RequestV0:
		return encodeRequestV0(dst, r)
	default:
		return 0, ErrUnknownVersion
	}
}

func encodeRequestV0(dst []byte, r RequestV0) (int, error) {
	if r.Query >= queryV0Count {
		return 0, ErrUnknownQuery
	}
	if len(dst) < versionSize+queryV0Size {
		return 0, ErrShortBuffer
	}
	dst[0] = byte(V0)
	dst[versionSize] = byte(r.Query)
	return versionSize + queryV0Size, nil
}

// EncodeSeqRegsResponse writes outcome and its trailer into dst and returns
// the byte count. Only SeqRegsSuccess carries a trailer. A trailer past
// SeqRegsResponseV0Trailer means the budget constants no longer match the
// hardware; the response must be dropped, never truncated.
func EncodeSeqRegsResponse(dst []byte, outcome SeqRegsResponseV0, trailer []byte) (int, error) {
	if outcome >= seqRegsResponseV0Count {
		return 0, ErrUnknownResponse
	}
	if outcome != SeqRegsSuccess && len(trailer) > 0 {
		return 0, ErrUnexpectedTrailer
	}
	if len(trailer) > SeqRegsResponseV0Trailer {
		return 0, ErrTrailerBudget
	}
	n := seqRegsResponseV0Size + len(trailer)
	if len(dst) < n {
		return 0, ErrShortBuffer
	}
	dst[0] = byte(outcome)
	copy(dst[seqRegsResponseV0Size:], trailer)
	return n, nil
}
