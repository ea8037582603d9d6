// Package repository reads and appends evaluation data in the backing store.
//
// The backing store is a spreadsheet exposed as a single web endpoint:
// GET returns every member and every evaluation, POST appends one evaluation.
// There is no partial read and no update or delete.
package repository

import (
	"context"

	"github.com/okian/peereval/internal/domain/model"
)

// Store provides read/append access to the roster and evaluation history.
type Store interface {
	// Load reads the full roster and the full history in one round trip.
	Load(ctx context.Context) (model.Snapshot, error)

	// Append adds one evaluation record.
	Append(ctx context.Context, r model.Record) error
}
