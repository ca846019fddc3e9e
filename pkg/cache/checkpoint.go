package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// CheckpointDir is the directory under the output root used by the default
// file-backed ledger.
const CheckpointDir = ".checkpoints"

// FrameRecord is what the ledger stores for a completed frame.
type FrameRecord struct {
	Split       string    `json:"split"`
	Index       int       `json:"index"`
	Labels      int       `json:"labels"`
	Background  bool      `json:"background"`
	CompletedAt time.Time `json:"completed_at"`
}

// Hash returns the hex SHA-256 of data. Run keys are the hash of the
// effective configuration.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Checkpoint records which frames of a run finished writing. Records are
// scoped to a run key so a ledger written under one configuration is never
// trusted by another.
type Checkpoint struct {
	store Cache
	run   string
}

// NewCheckpoint returns a ledger for the run identified by runKey. A nil
// store disables checkpointing.
func NewCheckpoint(store Cache, runKey string) *Checkpoint {
	if store == nil {
		store = NewNullCache()
	}
	return &Checkpoint{store: store, run: runKey}
}

// Key returns the ledger key of a frame: <runKey>/<split>/<index>.
func (c *Checkpoint) Key(split string, index int) string {
	return fmt.Sprintf("%s/%s/%d", c.run, split, index)
}

// Lookup returns the record of a frame if one was written.
func (c *Checkpoint) Lookup(ctx context.Context, split string, index int) (FrameRecord, bool, error) {
	var (
		data []byte
		hit  bool
	)
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = c.store.Get(ctx, c.Key(split, index))
		return err
	})
	if err != nil || !hit {
		return FrameRecord{}, false, err
	}

	var rec FrameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return FrameRecord{}, false, nil
	}
	return rec, true, nil
}

// Mark records a completed frame.
func (c *Checkpoint) Mark(ctx context.Context, rec FrameRecord) error {
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now().UTC()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return RetryWithBackoff(ctx, func() error {
		return c.store.Set(ctx, c.Key(rec.Split, rec.Index), data, 0)
	})
}

// Clear forgets frames [0, count) of split.
func (c *Checkpoint) Clear(ctx context.Context, split string, count int) error {
	for i := range count {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.store.Delete(ctx, c.Key(split, i)); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying store.
func (c *Checkpoint) Close() error {
	return c.store.Close()
}
