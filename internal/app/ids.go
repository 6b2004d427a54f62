package app

import "github.com/google/uuid"

// newIdempotencyKey generates the per-request key that lets the remote
// service deduplicate a manually retried mutation.
func newIdempotencyKey() string {
	return uuid.NewString()
}
