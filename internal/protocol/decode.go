package protocol

// DecodeRequest parses the structured portion of a request and returns the
// envelope plus the bytes consumed. Anything past the structured portion is
// the request trailer and stays the caller's to interpret; version 0 permits
// none. An unrecognized version tag fails with ErrUnknownVersion: there is no
// negotiation, a decoder rejects versions it was not built for rather than
// misreading the bytes that follow.
func DecodeRequest(src []byte) (Request, int, error) {
	if len(src) < versionSize {
		return nil, 0, ErrTruncated
	}
	switch Version(src[0]) {
	case V0:
		return decodeRequestV0(src)
	default:
		return nil, 0, ErrUnknownVersion
	}
}

func decodeRequestV0(src []byte) (Request, int, error) {
	if len(src) < versionSize+queryV0Size {
		return nil, 0, ErrTruncated
	}
	q := QueryV0(src[versionSize])
	if q >= queryV0Count {
		return nil, 0, ErrUnknownQuery
	}
	return RequestV0{Query: q}, versionSize + queryV0Size, nil
}

// DecodeSeqRegsResponse parses a response to QueryV0SequencerRegisters. The
// returned trailer aliases src; callers that keep it past the next socket
// read must copy it out.
func DecodeSeqRegsResponse(src []byte) (SeqRegsResponseV0, []byte, error) {
	if len(src) < seqRegsResponseV0Size {
		return 0, nil, ErrTruncated
	}
	outcome := SeqRegsResponseV0(src[0])
	if outcome >= seqRegsResponseV0Count {
		return 0, nil, ErrUnknownResponse
	}
	trailer := src[seqRegsResponseV0Size:]
	if outcome != SeqRegsSuccess && len(trailer) > 0 {
		return 0, nil, ErrUnexpectedTrailer
	}
	if len(trailer) > SeqRegsResponseV0Trailer {
		return 0, nil, ErrTrailerBudget
	}
	if len(trailer) == 0 {
		return outcome, nil, nil
	}
	return outcome, trailer, nil
}
