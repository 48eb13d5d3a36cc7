package registry

import (
	"slices"
	"strings"
	"sync"
	"task-manager/tasks/handlers"
)

// CommandRegistry maps command texts to handlers. Lookups ignore case, so
// "Eat Pizza" and "eat pizza" resolve to the same handler.
type CommandRegistry struct {
	mu       sync.RWMutex
	handlers map[string]handlers.CommandHandler
	fallback handlers.CommandHandler
}

// NewRegistry constructs an empty registry with no fallback.
func NewRegistry() *CommandRegistry {
	return &CommandRegistry{
		handlers: make(map[string]handlers.CommandHandler),
	}
}

func normalize(command string) string {
	return strings.ToLower(command)
}

// Register binds handler to command, replacing any earlier binding.
func (r *CommandRegistry) Register(command string, handler handlers.CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[normalize(command)] = handler
}

// SetFallback sets the handler used by Resolve for unregistered commands.
func (r *CommandRegistry) SetFallback(handler handlers.CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fallback = handler
}

// Get returns the handler registered for command.
// If no handler is registered, ok will be false.
func (r *CommandRegistry) Get(command string) (handlers.CommandHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[normalize(command)]
	return h, ok
}

// Resolve returns the registered handler or the fallback.
func (r *CommandRegistry) Resolve(command string) (handlers.CommandHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if h, ok := r.handlers[normalize(command)]; ok {
		return h, true
	}
	return r.fallback, r.fallback != nil
}

// GetRegisteredCommands returns the registered commands, sorted.
// This is useful for health checks and debugging.
func (r *CommandRegistry) GetRegisteredCommands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	commands := make([]string, 0, len(r.handlers))
	for command := range r.handlers {
		commands = append(commands, command)
	}
	slices.Sort(commands)
	return commands
}
