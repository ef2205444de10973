package hub

import (
	"context"

	"github.com/fwdcp/pugchamp/pkg/types"
)

type HubMsg interface{ isHubMsg() }

type Subscribe struct {
	ClientID string
	Outbox   chan types.ServerMessage
}

type Unsubscribe struct {
	ClientID string
}

type PublishStatus struct {
	Status types.DraftStatus
}

type PublishAction struct {
	User   string
	Action string
}

type ShutdownHub struct{}

func (Subscribe) isHubMsg()     {}
func (Unsubscribe) isHubMsg()   {}
func (PublishStatus) isHubMsg() {}
func (PublishAction) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

// Hub fans draft status snapshots and action lines out to connected
// clients. New subscribers immediately receive the latest snapshot; slow
// clients are dropped rather than allowed to stall the broadcast.
type Hub struct {
	inbox   chan HubMsg
	clients map[string]chan types.ServerMessage
	last    *types.DraftStatus
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		clients: make(map[string]chan types.ServerMessage),
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// PublishStatus implements the draft service's status sink.
func (h *Hub) PublishStatus(status types.DraftStatus) {
	select {
	case h.inbox <- PublishStatus{Status: status}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Subscribe:
				h.clients[msg.ClientID] = msg.Outbox
				if h.last != nil {
					select {
					case msg.Outbox <- types.ServerMessage{Type: "draftStatusUpdated", Status: h.last}:
					default:
					}
				}

			case Unsubscribe:
				delete(h.clients, msg.ClientID)

			case PublishStatus:
				status := msg.Status
				h.last = &status
				h.broadcast(types.ServerMessage{Type: "draftStatusUpdated", Status: &status})

			case PublishAction:
				h.broadcast(types.ServerMessage{Type: "actionPosted", User: msg.User, Action: msg.Action})

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
	h.cancel()
}

func (h *Hub) broadcast(msg types.ServerMessage) {
	for id, ch := range h.clients {
		select {
		case ch <- msg:
			// ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(h.clients, id)
		}
	}
}
