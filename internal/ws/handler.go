package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fwdcp/pugchamp/internal/draft"
	"github.com/fwdcp/pugchamp/internal/hub"
	"github.com/fwdcp/pugchamp/pkg/types"
)

// Handler streams draft status snapshots to a client and feeds its
// makeDraftChoice messages into the draft service. The user query
// parameter carries the authenticated identity; session management itself
// lives upstream.
func Handler(h *hub.Hub, svc *draft.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.URL.Query().Get("user")

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.ServerMessage, 8)
		clientID := uuid.NewString()

		h.Inbox() <- hub.Subscribe{ClientID: clientID, Outbox: out}
		defer func() { h.Inbox() <- hub.Unsubscribe{ClientID: clientID} }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range out {
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				log.Debug("discarding malformed client message", zap.Error(err))
				continue
			}

			choice, ok := toDraftChoice(cm, user)
			if !ok {
				log.Debug("discarding unknown client message", zap.String("type", cm.Type))
				continue
			}

			if err := svc.Commit(r.Context(), choice); err != nil {
				log.Warn("submitting draft choice", zap.Error(err))
				return
			}
		}
	}
}

func toDraftChoice(m types.ClientMessage, user string) (draft.Choice, bool) {
	if m.Type != "makeDraftChoice" || m.Choice == nil {
		return draft.Choice{}, false
	}

	return draft.Choice{
		Type:     draft.TurnType(m.Choice.Type),
		User:     draft.PlayerID(user),
		Faction:  draft.Faction(m.Choice.Faction),
		Captain:  draft.PlayerID(m.Choice.Captain),
		Player:   draft.PlayerID(m.Choice.Player),
		Role:     m.Choice.Role,
		Override: m.Choice.Override,
		Map:      m.Choice.Map,
	}, true
}
