package state

import (
	"context"
	"math/rand/v2"
	"sync"
)

// Default random generator settings.
const (
	DefaultStateLength = 30
	DefaultAlphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

// maxRedraws bounds how often RandomGenerator retries when it draws the
// previous state again.
const maxRedraws = 8

// Generator produces the next state for Owner.Mutate.
type Generator interface {
	Next(ctx context.Context, prev string) (string, error)
}

// GeneratorFunc is a function adapter for Generator.
type GeneratorFunc func(ctx context.Context, prev string) (string, error)

// Next implements Generator.
func (f GeneratorFunc) Next(ctx context.Context, prev string) (string, error) {
	return f(ctx, prev)
}

// RandomGenerator produces fixed-length strings drawn from an alphabet.
// It is safe for concurrent use.
type RandomGenerator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	length   int
	alphabet []rune
}

// RandomOption configures a RandomGenerator.
type RandomOption func(*RandomGenerator)

// WithLength sets the generated state length in runes.
func WithLength(n int) RandomOption {
	return func(g *RandomGenerator) {
		if n > 0 {
			g.length = n
		}
	}
}

// WithAlphabet sets the characters states are drawn from.
func WithAlphabet(alphabet string) RandomOption {
	return func(g *RandomGenerator) {
		if alphabet != "" {
			g.alphabet = []rune(alphabet)
		}
	}
}

// WithSeed makes the generator deterministic.
func WithSeed(seed uint64) RandomOption {
	return func(g *RandomGenerator) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// NewRandomGenerator creates a random generator. Without WithSeed it is
// seeded from the runtime's random source.
func NewRandomGenerator(opts ...RandomOption) *RandomGenerator {
	g := &RandomGenerator{
		length:   DefaultStateLength,
		alphabet: []rune(DefaultAlphabet),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g
}

// Next returns a new random state, redrawing a bounded number of times if
// it happens to equal prev.
func (g *RandomGenerator) Next(_ context.Context, prev string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := g.draw()
	for i := 0; i < maxRedraws && next == prev; i++ {
		next = g.draw()
	}
	return next, nil
}

func (g *RandomGenerator) draw() string {
	out := make([]rune, g.length)
	for i := range out {
		out[i] = g.alphabet[g.rng.IntN(len(g.alphabet))]
	}
	return string(out)
}

// SequenceGenerator returns a fixed list of states in order.
// Useful for deterministic tests and scripted runs.
type SequenceGenerator struct {
	mu     sync.Mutex
	values []string
	next   int
}

// NewSequenceGenerator creates a generator that yields values in order.
func NewSequenceGenerator(values ...string) *SequenceGenerator {
	return &SequenceGenerator{values: append([]string(nil), values...)}
}

// Next returns the next value or ErrGeneratorExhausted.
func (g *SequenceGenerator) Next(context.Context, string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.next >= len(g.values) {
		return "", ErrGeneratorExhausted
	}
	v := g.values[g.next]
	g.next++
	return v, nil
}

// Remaining returns how many values are left.
func (g *SequenceGenerator) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.values) - g.next
}
