package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/fwdcp/pugchamp/internal/draft"
	"github.com/fwdcp/pugchamp/internal/hub"
)

// Broadcaster posts human-readable action lines to the client hub and
// routes operational errors to the structured log.
type Broadcaster struct {
	hub *hub.Hub
	log *zap.Logger
}

func NewBroadcaster(h *hub.Hub, log *zap.Logger) *Broadcaster {
	return &Broadcaster{hub: h, log: log}
}

func (b *Broadcaster) PostAction(_ context.Context, user draft.PlayerID, action string) {
	b.log.Info("action posted", zap.String("user", string(user)), zap.String("action", action))
	b.hub.Inbox() <- hub.PublishAction{User: string(user), Action: action}
}

func (b *Broadcaster) PostError(_ context.Context, description string, err error) {
	b.log.Error(description, zap.Error(err))
}
