// Package store keeps a host-side history of query answers so operators can
// diff register images across time and firmware revisions.
package store

import (
	"context"
	"time"
)

// SnapshotRecord is one recorded query answer. Image and Revision are only
// meaningful on success records; failures keep the outcome string alone.
type SnapshotRecord struct {
	ID       int64
	Target   string
	Query    string
	Outcome  string
	Revision int64
	Image    []byte
	TakenAt  time.Time
}

// Store persists query snapshots. An empty target selects snapshots across
// all agents.
type Store interface {
	SaveSnapshot(ctx context.Context, rec *SnapshotRecord) error
	ListSnapshots(ctx context.Context, target string, limit int) ([]*SnapshotRecord, error)
	LatestSnapshot(ctx context.Context, target string) (*SnapshotRecord, error)
	Close() error
}
