package sequencer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSimServesRevisionAndPattern(t *testing.T) {
	sim := NewSim(0x03, 64)
	first := make([]byte, 64)
	n, err := sim.ReadRegisters(context.Background(), first)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 64 {
		t.Fatalf("expected 64 bytes, got %d", n)
	}
	if first[0] != 0x03 {
		t.Fatalf("expected revision 0x03, got %#x", first[0])
	}

	second := make([]byte, 64)
	if _, err := sim.ReadRegisters(context.Background(), second); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("image not deterministic across reads")
	}
}

func TestSimTruncatesToBuffer(t *testing.T) {
	sim := NewSim(0x01, 64)
	dst := make([]byte, 16)
	n, err := sim.ReadRegisters(context.Background(), dst)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 16 {
		t.Fatalf("expected 16 bytes, got %d", n)
	}
}

func TestSimFailNext(t *testing.T) {
	sim := NewSim(0x01, 8)
	sim.FailNext(ErrTaskDead)

	dst := make([]byte, 8)
	if _, err := sim.ReadRegisters(context.Background(), dst); !errors.Is(err, ErrTaskDead) {
		t.Fatalf("expected ErrTaskDead, got %v", err)
	}
	if _, err := sim.ReadRegisters(context.Background(), dst); err != nil {
		t.Fatalf("injection did not clear: %v", err)
	}
	if got := sim.Reads(); got != 2 {
		t.Fatalf("expected 2 reads, got %d", got)
	}
}

func TestSimCancelledContext(t *testing.T) {
	sim := NewSim(0x01, 8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sim.ReadRegisters(ctx, make([]byte, 8)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFileReadsImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regs.bin")
	img := []byte{0x03, 0xde, 0xad, 0xbe, 0xef}
	if err := os.WriteFile(path, img, 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}

	dst := make([]byte, 64)
	n, err := File{Path: path}.ReadRegisters(context.Background(), dst)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != len(img) {
		t.Fatalf("expected %d bytes, got %d", len(img), n)
	}
	if !bytes.Equal(dst[:n], img) {
		t.Fatalf("image bytes mangled")
	}
}

func TestFileMissingImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.bin")
	_, err := File{Path: path}.ReadRegisters(context.Background(), make([]byte, 8))
	if !errors.Is(err, ErrReadFailed) {
		t.Fatalf("expected ErrReadFailed, got %v", err)
	}
}

func TestFileDeadMarker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regs.bin")
	if err := os.WriteFile(path, []byte{0x03}, 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}
	if err := os.WriteFile(path+".dead", nil, 0o600); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	_, err := File{Path: path}.ReadRegisters(context.Background(), make([]byte, 8))
	if !errors.Is(err, ErrTaskDead) {
		t.Fatalf("expected ErrTaskDead, got %v", err)
	}
}
