// Package idgen provides ID generation utilities
package idgen

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator generates unique identifiers
type Generator interface {
	Generate() string
}

// Kind names a generator strategy for configuration
type Kind string

const (
	KindUUID       Kind = "uuid"
	KindULID       Kind = "ulid"
	KindSequential Kind = "sequential"
)

// NewFromKind builds the generator a configuration string asks for
func NewFromKind(kind string, prefix string) (Generator, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(kind))) {
	case KindUUID, "":
		return NewUUID(prefix), nil
	case KindULID:
		return NewULID(prefix), nil
	case KindSequential:
		return NewSequential(prefix), nil
	default:
		return nil, fmt.Errorf("unknown id generator %q", kind)
	}
}

// SequentialGenerator generates sequential IDs for testing
type SequentialGenerator struct {
	prefix  string
	counter uint64
}

// NewSequential creates a new sequential generator
func NewSequential(prefix string) *SequentialGenerator {
	return &SequentialGenerator{prefix: prefix}
}

// Generate creates a new sequential ID
func (g *SequentialGenerator) Generate() string {
	n := atomic.AddUint64(&g.counter, 1)
	if g.prefix != "" {
		return fmt.Sprintf("%s_%d", g.prefix, n)
	}
	return fmt.Sprintf("%d", n)
}

// UUIDGenerator generates UUIDs with optional prefix
type UUIDGenerator struct {
	prefix string
}

// NewUUID creates a new UUID generator with optional prefix
func NewUUID(prefix string) *UUIDGenerator {
	return &UUIDGenerator{prefix: prefix}
}

// Generate creates a new UUID-based ID
func (g *UUIDGenerator) Generate() string {
	id := uuid.New().String()
	if g.prefix != "" {
		return fmt.Sprintf("%s_%s", g.prefix, id)
	}
	return id
}

// ULIDGenerator generates lexically sortable IDs. Two IDs minted in the same
// millisecond still sort in creation order.
type ULIDGenerator struct {
	prefix string
	now    func() time.Time

	mu      sync.Mutex
	entropy io.Reader
}

// NewULID creates a new ULID generator with optional prefix
func NewULID(prefix string) *ULIDGenerator {
	return &ULIDGenerator{
		prefix:  prefix,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Generate creates a new ULID-based ID
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	g.mu.Unlock()
	if err != nil {
		// Only reachable when the monotonic entropy overflows within one
		// millisecond or crypto/rand fails.
		panic(fmt.Sprintf("ulid generation failed: %v", err))
	}

	if g.prefix != "" {
		return fmt.Sprintf("%s_%s", g.prefix, id.String())
	}
	return id.String()
}
