package domain

import (
	"time"

	"github.com/google/uuid"
)

// IDGenerator hands out identifiers for new records. Services receive one at
// construction so tests can supply a deterministic sequence.
type IDGenerator interface {
	NewID() uuid.UUID
}

// UUIDGenerator issues random (version 4) UUIDs.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() uuid.UUID { return uuid.New() }

// Clock returns the current time. time.Now satisfies it.
type Clock func() time.Time
