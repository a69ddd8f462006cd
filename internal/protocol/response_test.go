package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestSeqRegsResponseOrdinalsDense(t *testing.T) {
	want := []byte{0x00, 0x01, 0x02}
	for r := SeqRegsResponseV0(0); r < seqRegsResponseV0Count; r++ {
		var buf [AnyResponseV0MaxSize]byte
		n, err := EncodeSeqRegsResponse(buf[:], r, nil)
		if err != nil {
			t.Fatalf("encode %v: %v", r, err)
		}
		if n != 1 {
			t.Fatalf("encode %v: expected 1 byte, got %d", r, n)
		}
		if buf[0] != want[r] {
			t.Fatalf("encode %v: expected byte %#x, got %#x", r, want[r], buf[0])
		}
	}
}

func TestSeqRegsResponseTrailerRoundTrip(t *testing.T) {
	trailer := make([]byte, SeqRegsResponseV0Trailer)
	trailer[0] = 0x03
	for i := 1; i < len(trailer); i++ {
		trailer[i] = byte(i)
	}

	var buf [AnyResponseV0MaxSize]byte
	n, err := EncodeSeqRegsResponse(buf[:], SeqRegsSuccess, trailer)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if n != 65 {
		t.Fatalf("expected 65 bytes total, got %d", n)
	}
	if buf[0] != 0x00 {
		t.Fatalf("expected discriminant 0, got %#x", buf[0])
	}

	outcome, got, err := DecodeSeqRegsResponse(buf[:n])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if outcome != SeqRegsSuccess {
		t.Fatalf("expected SeqRegsSuccess, got %v", outcome)
	}
	if !bytes.Equal(got, trailer) {
		t.Fatalf("trailer not preserved byte-for-byte")
	}
	if got[0] != 0x03 {
		t.Fatalf("expected revision tag 0x03, got %#x", got[0])
	}
}

func TestSeqRegsResponseFailuresRoundTrip(t *testing.T) {
	for _, outcome := range []SeqRegsResponseV0{SeqRegsTaskDead, SeqRegsReadRegsFailed} {
		var buf [AnyResponseV0MaxSize]byte
		n, err := EncodeSeqRegsResponse(buf[:], outcome, nil)
		if err != nil {
			t.Fatalf("encode %v: %v", outcome, err)
		}
		got, trailer, err := DecodeSeqRegsResponse(buf[:n])
		if err != nil {
			t.Fatalf("decode %v: %v", outcome, err)
		}
		if got != outcome {
			t.Fatalf("expected %v, got %v", outcome, got)
		}
		if trailer != nil {
			t.Fatalf("%v: expected no trailer, got %d bytes", outcome, len(trailer))
		}
	}
}

func TestSeqRegsResponseTrailerBudget(t *testing.T) {
	over := make([]byte, SeqRegsResponseV0Trailer+1)
	var buf [AnyResponseV0MaxSize + 1]byte
	if _, err := EncodeSeqRegsResponse(buf[:], SeqRegsSuccess, over); !errors.Is(err, ErrTrailerBudget) {
		t.Fatalf("encode: expected ErrTrailerBudget, got %v", err)
	}

	src := make([]byte, 1+SeqRegsResponseV0Trailer+1)
	src[0] = byte(SeqRegsSuccess)
	if _, _, err := DecodeSeqRegsResponse(src); !errors.Is(err, ErrTrailerBudget) {
		t.Fatalf("decode: expected ErrTrailerBudget, got %v", err)
	}
}

func TestSeqRegsResponseTrailerOnFailure(t *testing.T) {
	var buf [AnyResponseV0MaxSize]byte
	if _, err := EncodeSeqRegsResponse(buf[:], SeqRegsTaskDead, []byte{0xaa}); !errors.Is(err, ErrUnexpectedTrailer) {
		t.Fatalf("encode: expected ErrUnexpectedTrailer, got %v", err)
	}
	if _, _, err := DecodeSeqRegsResponse([]byte{byte(SeqRegsReadRegsFailed), 0xaa}); !errors.Is(err, ErrUnexpectedTrailer) {
		t.Fatalf("decode: expected ErrUnexpectedTrailer, got %v", err)
	}
}

func TestDecodeSeqRegsResponseUnknown(t *testing.T) {
	if _, _, err := DecodeSeqRegsResponse([]byte{byte(seqRegsResponseV0Count)}); !errors.Is(err, ErrUnknownResponse) {
		t.Fatalf("expected ErrUnknownResponse, got %v", err)
	}
}

func TestDecodeSeqRegsResponseTruncated(t *testing.T) {
	if _, _, err := DecodeSeqRegsResponse(nil); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestEncodeSeqRegsResponseShortBuffer(t *testing.T) {
	trailer := make([]byte, SeqRegsResponseV0Trailer)
	short := make([]byte, 16)
	if _, err := EncodeSeqRegsResponse(short, SeqRegsSuccess, trailer); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
	if _, err := EncodeSeqRegsResponse(nil, SeqRegsTaskDead, nil); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
}
