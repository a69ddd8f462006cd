package sequencer

import (
	"context"
	"fmt"
	"os"
)

// deadMarkerSuffix marks a captured image as belonging to a stopped task.
const deadMarkerSuffix = ".dead"

// File serves a register image captured to disk, for replay and bench setups
// without sequencer hardware. A "<path>.dead" marker next to the image
// stands in for a stopped sequencer task.
type File struct {
	Path string
}

func (f File) ReadRegisters(ctx context.Context, dst []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if _, err := os.Stat(f.Path + deadMarkerSuffix); err == nil {
		return 0, ErrTaskDead
	}
	img, err := os.ReadFile(f.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrReadFailed, f.Path)
	}
	return copy(dst, img), nil
}

var _ Reader = File{}
