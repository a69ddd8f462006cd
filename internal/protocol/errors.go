package protocol

import "errors"

var (
	ErrTruncated         = errors.New("protocol: truncated message")
	ErrUnknownVersion    = errors.New("protocol: unknown version")
	ErrUnknownQuery      = errors.New("protocol: unknown query")
	ErrUnknownResponse   = errors.New("protocol: unknown response")
	ErrShortBuffer       = errors.New("protocol: short destination buffer")
	ErrTrailerBudget     = errors.New("protocol: trailer exceeds budget")
	ErrUnexpectedTrailer = errors.New("protocol: trailer on trailerless variant")
)
