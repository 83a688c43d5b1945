package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Strob0t/workflow-notify/internal/logger"
)

// rejection is the body of every non-2xx webhook answer. GitHub shows it in
// the delivery log, so it carries the ID needed to find our side of it.
type rejection struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.WarnContext(r.Context(), "webhook response not written", "status", status, "error", err)
	}
}

func reject(w http.ResponseWriter, r *http.Request, status int, reason string) {
	respond(w, r, status, rejection{Error: reason, RequestID: logger.RequestID(r.Context())})
}
