package dispatcher

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry manages commands by exact name.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

// Register adds cmd under its name, replacing any command already there.
func (r *Registry) Register(cmd Command) error {
	if cmd == nil || cmd.Name() == "" {
		return ErrInvalidCommand
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[cmd.Name()] = cmd
	return nil
}

// Unregister removes the command with the given name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.commands, name)
}

// Get returns the command registered under name, or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commands[name]
}

// Has returns true if a command is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.commands[name]
	return ok
}

// List returns all registered names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered commands.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Dispatch executes the command registered under name.
func (r *Registry) Dispatch(ctx context.Context, name string) error {
	cmd := r.Get(name)
	if cmd == nil {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return execute(ctx, cmd.Execute)
}
