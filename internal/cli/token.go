package cli

import (
	"sync"

	"github.com/google/uuid"
)

// TraceTokenGenerator produces the trace id stamped on run output so
// a query execution can be correlated with logs.
type TraceTokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 trace tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, making
// tokens sortable by creation time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined trace tokens for testing, so
// command output stays byte-stable.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
// Panics if all tokens have been consumed.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic("FixedGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
