package sequencer

import (
	"context"
	"sync"
)

// Sim is an in-memory sequencer for development and tests. It serves a
// deterministic register image and supports one-shot failure injection.
type Sim struct {
	mu       sync.Mutex
	revision byte
	size     int
	next     error
	reads    int
}

// NewSim returns a simulated sequencer whose image is size bytes, starting
// with the given revision tag.
func NewSim(revision byte, size int) *Sim {
	return &Sim{revision: revision, size: size}
}

func (s *Sim) ReadRegisters(ctx context.Context, dst []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.next != nil {
		err := s.next
		s.next = nil
		return 0, err
	}
	n := s.size
	if n > len(dst) {
		n = len(dst)
	}
	if n > 0 {
		dst[0] = s.revision
	}
	for i := 1; i < n; i++ {
		dst[i] = byte(i)
	}
	return n, nil
}

// FailNext makes the next read fail with err and then clears itself.
func (s *Sim) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = err
}

// Reads reports how many reads have been attempted.
func (s *Sim) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

var _ Reader = (*Sim)(nil)
