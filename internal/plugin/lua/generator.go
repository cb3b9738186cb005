package lua

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// GeneratorFunction is the global a generator script must define.
const GeneratorFunction = "next_state"

// Generator produces owner states by calling next_state(prev) in a Lua
// script. It satisfies state.Generator and is safe for concurrent use.
type Generator struct {
	mu    sync.RWMutex
	state *State
	path  string
	opts  []StateOption
}

// LoadGenerator loads the generator script at path.
func LoadGenerator(ctx context.Context, path string, opts ...StateOption) (*Generator, error) {
	s, err := load(opts, func(s *State) error { return s.DoFile(ctx, path) })
	if err != nil {
		return nil, fmt.Errorf("load generator %s: %w", path, err)
	}
	return &Generator{state: s, path: path, opts: opts}, nil
}

// NewGenerator builds a generator from script source.
func NewGenerator(ctx context.Context, source string, opts ...StateOption) (*Generator, error) {
	s, err := load(opts, func(s *State) error { return s.DoString(ctx, source) })
	if err != nil {
		return nil, fmt.Errorf("load generator: %w", err)
	}
	return &Generator{state: s, opts: opts}, nil
}

// load creates a state, runs the loader, and checks next_state exists.
func load(opts []StateOption, loader func(*State) error) (*State, error) {
	s := NewState(opts...)
	if err := loader(s); err != nil {
		s.Close()
		return nil, err
	}
	if !s.HasFunction(GeneratorFunction) {
		s.Close()
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, GeneratorFunction)
	}
	return s, nil
}

// Next calls next_state(prev) and returns its string result.
// Lua numbers are converted to their string form. An empty string is
// rejected with ErrInvalidResult, since an owner's state is never empty.
func (g *Generator) Next(ctx context.Context, prev string) (string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ret, err := g.state.Call(ctx, GeneratorFunction, lua.LString(prev))
	if err != nil {
		return "", err
	}

	switch v := ret.(type) {
	case lua.LString:
		if v == "" {
			return "", fmt.Errorf("%w: empty string", ErrInvalidResult)
		}
		return string(v), nil
	case lua.LNumber:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidResult, ret.Type())
	}
}

// Reload re-reads the script file into a fresh state. On failure the
// current script stays active.
func (g *Generator) Reload(ctx context.Context) error {
	if g.path == "" {
		return ErrNoSource
	}

	s, err := load(g.opts, func(s *State) error { return s.DoFile(ctx, g.path) })
	if err != nil {
		return fmt.Errorf("reload generator %s: %w", g.path, err)
	}

	g.mu.Lock()
	old := g.state
	g.state = s
	g.mu.Unlock()

	return old.Close()
}

// Path returns the script file, or "" for generators built from source.
func (g *Generator) Path() string {
	return g.path
}

// Close releases the Lua state.
func (g *Generator) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Close()
}
