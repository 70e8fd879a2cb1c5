package v1

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
	apiv1alpha1 "github.com/KirkDiggler/rpg-tracker/internal/handlers/api/v1alpha1"
	"github.com/KirkDiggler/rpg-tracker/internal/orchestrators/encounter"
)

// EncounterHandler handles the encounter endpoints. Bodies use the same
// message shapes as the gRPC API.
type EncounterHandler struct {
	encounterService encounter.Service
}

// NewEncounterHandler creates a new encounter handler
func NewEncounterHandler(encounterService encounter.Service) *EncounterHandler {
	return &EncounterHandler{encounterService: encounterService}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.InvalidArgument("invalid request body")
	}
	return nil
}

// Create handles POST /api/v1/encounters
func (h *EncounterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req apiv1alpha1.CreateEncounterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.encounterService.CreateEncounter(r.Context(), &encounter.CreateEncounterInput{
		OwnerID:     UserIDFromContext(r.Context()),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, apiv1alpha1.CreateEncounterResponse{Encounter: out.Encounter})
}

// List handles GET /api/v1/encounters
func (h *EncounterHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.encounterService.ListUserEncounters(r.Context(), &encounter.ListUserEncountersInput{
		OwnerID: UserIDFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiv1alpha1.ListEncountersResponse{Encounters: out.Encounters})
}

// Get handles GET /api/v1/encounters/{id}
func (h *EncounterHandler) Get(w http.ResponseWriter, r *http.Request) {
	out, err := h.encounterService.GetEncounter(r.Context(), &encounter.GetEncounterInput{
		EncounterID: mux.Vars(r)["id"],
		UserID:      UserIDFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiv1alpha1.GetEncounterResponse{Encounter: out.Encounter})
}

// Update handles PATCH /api/v1/encounters/{id}
func (h *EncounterHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req apiv1alpha1.UpdateEncounterRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	input := &encounter.UpdateEncounterInput{
		EncounterID: mux.Vars(r)["id"],
		UserID:      UserIDFromContext(r.Context()),
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Status != nil {
		status := entities.EncounterStatus(*req.Status)
		input.Status = &status
	}

	out, err := h.encounterService.UpdateEncounter(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiv1alpha1.UpdateEncounterResponse{Encounter: out.Encounter})
}

// Delete handles DELETE /api/v1/encounters/{id}
func (h *EncounterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.encounterService.DeleteEncounter(r.Context(), &encounter.DeleteEncounterInput{
		EncounterID: mux.Vars(r)["id"],
		UserID:      UserIDFromContext(r.Context()),
	}); err != nil {
		writeError(w, err)
		return
	}

	writeNoContent(w)
}

// AddParticipant handles POST /api/v1/encounters/{id}/participants
func (h *EncounterHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	var req apiv1alpha1.Participant
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.encounterService.AddParticipant(r.Context(), &encounter.AddParticipantInput{
		EncounterID: mux.Vars(r)["id"],
		UserID:      UserIDFromContext(r.Context()),
		Participant: req.ToData(),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, apiv1alpha1.AddParticipantResponse{
		Encounter:     out.Encounter,
		ParticipantID: out.ParticipantID,
	})
}

// UpdateParticipant handles PATCH /api/v1/encounters/{id}/participants/{pid}
func (h *EncounterHandler) UpdateParticipant(w http.ResponseWriter, r *http.Request) {
	var req apiv1alpha1.ParticipantPatch
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	vars := mux.Vars(r)
	out, err := h.encounterService.UpdateParticipant(r.Context(), &encounter.UpdateParticipantInput{
		EncounterID:   vars["id"],
		ParticipantID: vars["pid"],
		UserID:        UserIDFromContext(r.Context()),
		Patch:         req.ToPatch(),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiv1alpha1.UpdateParticipantResponse{Encounter: out.Encounter})
}

// RemoveParticipant handles DELETE /api/v1/encounters/{id}/participants/{pid}
func (h *EncounterHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	out, err := h.encounterService.RemoveParticipant(r.Context(), &encounter.RemoveParticipantInput{
		EncounterID:   vars["id"],
		ParticipantID: vars["pid"],
		UserID:        UserIDFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiv1alpha1.RemoveParticipantResponse{Encounter: out.Encounter})
}

// UpdateParticipantHP handles PATCH /api/v1/encounters/{id}/participants/{pid}/hp
func (h *EncounterHandler) UpdateParticipantHP(w http.ResponseWriter, r *http.Request) {
	var req apiv1alpha1.UpdateParticipantHPRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	vars := mux.Vars(r)
	out, err := h.encounterService.UpdateParticipantHP(r.Context(), &encounter.UpdateParticipantHPInput{
		EncounterID:   vars["id"],
		ParticipantID: vars["pid"],
		UserID:        UserIDFromContext(r.Context()),
		CurrentHP:     req.CurrentHP,
		TempHP:        req.TempHP,
		Damage:        req.Damage,
		Healing:       req.Healing,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiv1alpha1.UpdateParticipantHPResponse{Encounter: out.Encounter})
}

// AddLairAction handles POST /api/v1/encounters/{id}/lair-actions
func (h *EncounterHandler) AddLairAction(w http.ResponseWriter, r *http.Request) {
	var req apiv1alpha1.AddLairActionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.encounterService.AddLairAction(r.Context(), &encounter.AddLairActionInput{
		EncounterID: mux.Vars(r)["id"],
		UserID:      UserIDFromContext(r.Context()),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, apiv1alpha1.AddLairActionResponse{
		Encounter:    out.Encounter,
		LairActionID: out.LairActionID,
	})
}

// StartCombat handles POST /api/v1/encounters/{id}/combat/start
func (h *EncounterHandler) StartCombat(w http.ResponseWriter, r *http.Request) {
	out, err := h.encounterService.StartCombat(r.Context(), &encounter.StartCombatInput{
		EncounterID: mux.Vars(r)["id"],
		UserID:      UserIDFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiv1alpha1.StartCombatResponse{Encounter: out.Encounter})
}

// EndCombat handles POST /api/v1/encounters/{id}/combat/end
func (h *EncounterHandler) EndCombat(w http.ResponseWriter, r *http.Request) {
	out, err := h.encounterService.EndCombat(r.Context(), &encounter.EndCombatInput{
		EncounterID: mux.Vars(r)["id"],
		UserID:      UserIDFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiv1alpha1.EndCombatResponse{Encounter: out.Encounter})
}

// NextTurn handles POST /api/v1/encounters/{id}/combat/next-turn
func (h *EncounterHandler) NextTurn(w http.ResponseWriter, r *http.Request) {
	out, err := h.encounterService.NextTurn(r.Context(), &encounter.NextTurnInput{
		EncounterID: mux.Vars(r)["id"],
		UserID:      UserIDFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiv1alpha1.NextTurnResponse{
		Encounter:            out.Encounter,
		CurrentParticipantID: out.CurrentParticipantID,
	})
}

// GetInitiativeOrder handles GET /api/v1/encounters/{id}/initiative
func (h *EncounterHandler) GetInitiativeOrder(w http.ResponseWriter, r *http.Request) {
	out, err := h.encounterService.GetInitiativeOrder(r.Context(), &encounter.GetInitiativeOrderInput{
		EncounterID: mux.Vars(r)["id"],
		UserID:      UserIDFromContext(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, apiv1alpha1.GetInitiativeOrderResponse{
		EncounterID:          out.EncounterID,
		Order:                out.Order,
		Round:                out.Round,
		Turn:                 out.Turn,
		CurrentParticipantID: out.CurrentParticipantID,
	})
}
