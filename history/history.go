// Package history persists chat transcripts across dialog runs. The dialog
// loop itself never touches storage; the surrounding session decides what
// to keep and loads it back on demand.
package history

import (
	"context"
	"time"

	"github.com/sweetpotato0/colloquy/transcript"
)

// Record is a persisted transcript snapshot.
type Record struct {
	ID        string             `json:"id" bson:"_id"`
	Entries   []transcript.Entry `json:"entries" bson:"entries"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Clone creates a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cloned := *r
	cloned.Entries = append([]transcript.Entry(nil), r.Entries...)
	return &cloned
}

// Store persists transcript records keyed by ID.
type Store interface {
	Save(ctx context.Context, record *Record) error
	Load(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	Close() error
}
