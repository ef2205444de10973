package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fwdcp/pugchamp/internal/draft"
	"github.com/fwdcp/pugchamp/internal/hub"
	"github.com/fwdcp/pugchamp/internal/ws"
)

func SetupRoutes(svc *draft.Service, h *hub.Hub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/draft", LaunchDraft(svc, log))
	r.Post("/draft/abort", AbortDraft(svc))
	r.Get("/draft/status", DraftStatus(svc))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, svc, log))
	return r
}
