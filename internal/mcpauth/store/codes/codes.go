// Package codes holds pending authorizations keyed by their one-time code.
//
// Records are short-lived (the authorize endpoint uses a 600s TTL) and are
// consumed by a take operation that reads and deletes in one logical step.
// The Redis driver's take is atomic (GETDEL); the in-memory driver holds a
// lock across read-and-delete, so within one process it is atomic too. On
// backends without an atomic take, two near-simultaneous redemptions of the
// same code may both observe the record; that residual race is accepted and
// documented rather than papered over with cross-node locking.
package codes

import (
	"context"
	"time"

	"github.com/acacialabs/acacia/internal/mcpauth/domain"
)

// Store is the ephemeral single-use store for pending authorizations.
type Store interface {
	// Put stores record under code for ttl. An existing record under the
	// same code is overwritten; codes are random enough that this only
	// happens in tests.
	Put(ctx context.Context, code string, record domain.PendingAuthorization, ttl time.Duration) error

	// TakeOnce returns the record for code and deletes it in the same
	// logical step. Missing or expired codes return found=false; callers
	// map that to invalid_grant.
	TakeOnce(ctx context.Context, code string) (record domain.PendingAuthorization, found bool, err error)

	// Discard removes a code without returning it.
	Discard(ctx context.Context, code string) error
}
