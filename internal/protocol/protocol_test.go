package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeRequestSequencerRegisters(t *testing.T) {
	var buf [RequestMaxSize]byte
	n, err := EncodeRequest(buf[:], RequestV0{Query: QueryV0SequencerRegisters})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 bytes, got %d", n)
	}
	if !bytes.Equal(buf[:n], []byte{0x00, 0x00}) {
		t.Fatalf("unexpected wire bytes: %#v", buf[:n])
	}
}

func TestRequestRoundTrip(t *testing.T) {
	for q := QueryV0(0); q < queryV0Count; q++ {
		var buf [RequestMaxSize]byte
		n, err := EncodeRequest(buf[:], RequestV0{Query: q})
		if err != nil {
			t.Fatalf("encode %v: %v", q, err)
		}
		req, consumed, err := DecodeRequest(buf[:n])
		if err != nil {
			t.Fatalf("decode %v: %v", q, err)
		}
		if consumed != n {
			t.Fatalf("consumed %d of %d encoded bytes", consumed, n)
		}
		v0, ok := req.(RequestV0)
		if !ok {
			t.Fatalf("expected RequestV0, got %T", req)
		}
		if v0.Query != q {
			t.Fatalf("expected query %v, got %v", q, v0.Query)
		}
	}
}

func TestQueryOrdinalsDense(t *testing.T) {
	for i := 0; i < int(queryV0Count); i++ {
		req, _, err := DecodeRequest([]byte{byte(V0), byte(i)})
		if err != nil {
			t.Fatalf("decode ordinal %d: %v", i, err)
		}
		if got := req.(RequestV0).Query; got != QueryV0(i) {
			t.Fatalf("ordinal %d decoded as %v", i, got)
		}
	}
}

func TestDecodeRequestUnknownVersion(t *testing.T) {
	for _, src := range [][]byte{
		{0xff, 0x00},
		{byte(versionCount), 0x00},
	} {
		if _, _, err := DecodeRequest(src); !errors.Is(err, ErrUnknownVersion) {
			t.Fatalf("src %#v: expected ErrUnknownVersion, got %v", src, err)
		}
	}
}

func TestDecodeRequestUnknownQuery(t *testing.T) {
	src := []byte{byte(V0), byte(queryV0Count)}
	if _, _, err := DecodeRequest(src); !errors.Is(err, ErrUnknownQuery) {
		t.Fatalf("expected ErrUnknownQuery, got %v", err)
	}
}

func TestDecodeRequestTruncated(t *testing.T) {
	for _, src := range [][]byte{nil, {}, {byte(V0)}} {
		if _, _, err := DecodeRequest(src); !errors.Is(err, ErrTruncated) {
			t.Fatalf("src %#v: expected ErrTruncated, got %v", src, err)
		}
	}
}

func TestEncodeRequestShortBuffer(t *testing.T) {
	var buf [1]byte
	if _, err := EncodeRequest(buf[:], RequestV0{}); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("expected ErrShortBuffer, got %v", err)
	}
}

func TestEncodeRequestUndeclaredQuery(t *testing.T) {
	var buf [RequestMaxSize]byte
	if _, err := EncodeRequest(buf[:], RequestV0{Query: queryV0Count}); !errors.Is(err, ErrUnknownQuery) {
		t.Fatalf("expected ErrUnknownQuery, got %v", err)
	}
}
