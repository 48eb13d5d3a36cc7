package handlers

import (
	"context"
	"task-manager/tasks"
)

// CommandHandler reacts to one kind of command and returns a reply.
//
// Handlers are resolved by command text, so the same handler serves every
// task whose solution matches it.
type CommandHandler interface {
	Handle(ctx context.Context, cmd *tasks.Command) (string, error)
}

// HandlerFunc adapts a function to CommandHandler.
type HandlerFunc func(ctx context.Context, cmd *tasks.Command) (string, error)

func (f HandlerFunc) Handle(ctx context.Context, cmd *tasks.Command) (string, error) {
	return f(ctx, cmd)
}
