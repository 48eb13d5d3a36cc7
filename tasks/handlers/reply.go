package handlers

import (
	"context"
	"fmt"
	"io"
	"task-manager/logger"
	"task-manager/tasks"
)

// UnrecognizedReply is answered to commands nobody registered for.
const UnrecognizedReply = "You haven't given me a recognizable command!"

// ReplyHandler answers a command with a fixed reply. When out is set the
// reply is also written there, one line per command.
type ReplyHandler struct {
	reply  string
	out    io.Writer
	logger *logger.Logger
}

func NewReplyHandler(reply string, out io.Writer, lg *logger.Logger) *ReplyHandler {
	if lg == nil {
		lg = logger.Nop()
	}
	return &ReplyHandler{reply: reply, out: out, logger: lg}
}

// NewUnrecognizedHandler returns the fallback handler for unknown commands.
func NewUnrecognizedHandler(out io.Writer, lg *logger.Logger) *ReplyHandler {
	return NewReplyHandler(UnrecognizedReply, out, lg)
}

func (h *ReplyHandler) Handle(ctx context.Context, cmd *tasks.Command) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if h.out != nil {
		if _, err := fmt.Fprintln(h.out, h.reply); err != nil {
			return "", fmt.Errorf("failed to write reply: %w", err)
		}
	}

	h.logger.Command(cmd.ID, cmd.Text, "command answered", map[string]any{
		"task_id": cmd.TaskID,
		"reply":   h.reply,
	})
	return h.reply, nil
}
