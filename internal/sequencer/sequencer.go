// Package sequencer abstracts the sequencer register source the agent reads
// on request. The wire layer only ever sees the raw image bytes and the
// classified failure modes.
package sequencer

import (
	"context"
	"errors"
)

var (
	ErrTaskDead   = errors.New("sequencer: task not running")
	ErrReadFailed = errors.New("sequencer: register read failed")
)

// Reader pulls the current register image out of the sequencer.
type Reader interface {
	// ReadRegisters fills dst with the register image, leading byte carrying
	// the sequencer revision tag, and returns the byte count. The image is
	// truncated to dst when the source holds more. Failures are ErrTaskDead
	// when the sequencer task is gone and ErrReadFailed otherwise.
	ReadRegisters(ctx context.Context, dst []byte) (int, error)
}
