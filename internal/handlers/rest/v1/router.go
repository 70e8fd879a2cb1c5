// Package v1 serves the encounter engine as a JSON REST API
package v1

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KirkDiggler/rpg-tracker/internal/orchestrators/encounter"
)

// RouterConfig holds configuration for the REST router
type RouterConfig struct {
	Logger           *slog.Logger
	EncounterService encounter.Service
}

// NewRouter creates the REST router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := mux.NewRouter()
	h := NewEncounterHandler(cfg.EncounterService)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(Recovery(logger))
	api.Use(Logging(logger))

	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	encounters := api.PathPrefix("/encounters").Subrouter()
	encounters.Use(RequireUser())
	encounters.HandleFunc("", h.Create).Methods(http.MethodPost)
	encounters.HandleFunc("", h.List).Methods(http.MethodGet)
	encounters.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	encounters.HandleFunc("/{id}", h.Update).Methods(http.MethodPatch)
	encounters.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)

	encounters.HandleFunc("/{id}/participants", h.AddParticipant).Methods(http.MethodPost)
	encounters.HandleFunc("/{id}/participants/{pid}", h.UpdateParticipant).Methods(http.MethodPatch)
	encounters.HandleFunc("/{id}/participants/{pid}", h.RemoveParticipant).Methods(http.MethodDelete)
	encounters.HandleFunc("/{id}/participants/{pid}/hp", h.UpdateParticipantHP).Methods(http.MethodPatch)
	encounters.HandleFunc("/{id}/lair-actions", h.AddLairAction).Methods(http.MethodPost)

	encounters.HandleFunc("/{id}/combat/start", h.StartCombat).Methods(http.MethodPost)
	encounters.HandleFunc("/{id}/combat/end", h.EndCombat).Methods(http.MethodPost)
	encounters.HandleFunc("/{id}/combat/next-turn", h.NextTurn).Methods(http.MethodPost)
	encounters.HandleFunc("/{id}/initiative", h.GetInitiativeOrder).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
