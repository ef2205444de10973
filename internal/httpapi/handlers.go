package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/fwdcp/pugchamp/internal/draft"
)

type launchRequest struct {
	Players  map[string][]string `json:"players"`
	Captains []string            `json:"captains,omitempty"`
}

type abortRequest struct {
	Reason string `json:"reason,omitempty"`
}

// LaunchDraft starts a draft from externally decided pools. Who queued up
// and how they were grouped by role is the caller's business.
func LaunchDraft(svc *draft.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req launchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		players := make(map[string][]draft.PlayerID, len(req.Players))
		for role, ids := range req.Players {
			for _, id := range ids {
				players[role] = append(players[role], draft.PlayerID(id))
			}
		}
		captains := make([]draft.PlayerID, 0, len(req.Captains))
		for _, id := range req.Captains {
			captains = append(captains, draft.PlayerID(id))
		}

		if err := svc.Launch(r.Context(), players, captains); err != nil {
			log.Warn("launching draft", zap.Error(err))
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		w.WriteHeader(http.StatusAccepted)
	}
}

func AbortDraft(svc *draft.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req abortRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if err := svc.AbortDraft(r.Context(), req.Reason); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}

func DraftStatus(svc *draft.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.Status(r.Context())
		if err != nil {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(status)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
