// Package v1alpha1 serves the encounter engine over gRPC
package v1alpha1

import (
	"context"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
	"github.com/KirkDiggler/rpg-tracker/internal/orchestrators/encounter"
)

// EncounterHandlerConfig holds dependencies for the encounter handler
type EncounterHandlerConfig struct {
	EncounterService encounter.Service
}

// Validate ensures all required dependencies are present
func (c *EncounterHandlerConfig) Validate() error {
	if c == nil || c.EncounterService == nil {
		return errors.InvalidArgument("encounter service is required")
	}
	return nil
}

// EncounterHandler implements the encounter gRPC service
type EncounterHandler struct {
	encounterService encounter.Service
}

var _ EncounterServiceServer = (*EncounterHandler)(nil)

// NewEncounterHandler creates a new encounter handler with the given configuration
func NewEncounterHandler(cfg *EncounterHandlerConfig) (*EncounterHandler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &EncounterHandler{
		encounterService: cfg.EncounterService,
	}, nil
}

// CreateEncounter creates an encounter owned by the caller
func (h *EncounterHandler) CreateEncounter(
	ctx context.Context,
	req *CreateEncounterRequest,
) (*CreateEncounterResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.CreateEncounter(ctx, &encounter.CreateEncounterInput{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &CreateEncounterResponse{Encounter: out.Encounter}, nil
}

// GetEncounter returns one of the caller's encounters
func (h *EncounterHandler) GetEncounter(
	ctx context.Context,
	req *GetEncounterRequest,
) (*GetEncounterResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.GetEncounter(ctx, &encounter.GetEncounterInput{
		EncounterID: req.EncounterID,
		UserID:      userID,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &GetEncounterResponse{Encounter: out.Encounter}, nil
}

// ListEncounters returns the caller's encounters, most recently updated first
func (h *EncounterHandler) ListEncounters(
	ctx context.Context,
	_ *ListEncountersRequest,
) (*ListEncountersResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.ListUserEncounters(ctx, &encounter.ListUserEncountersInput{
		OwnerID: userID,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &ListEncountersResponse{Encounters: out.Encounters}, nil
}

// UpdateEncounter patches name, description or status
func (h *EncounterHandler) UpdateEncounter(
	ctx context.Context,
	req *UpdateEncounterRequest,
) (*UpdateEncounterResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	input := &encounter.UpdateEncounterInput{
		EncounterID: req.EncounterID,
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Status != nil {
		status := entities.EncounterStatus(*req.Status)
		input.Status = &status
	}

	out, err := h.encounterService.UpdateEncounter(ctx, input)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &UpdateEncounterResponse{Encounter: out.Encounter}, nil
}

// DeleteEncounter removes an encounter and everything in it
func (h *EncounterHandler) DeleteEncounter(
	ctx context.Context,
	req *DeleteEncounterRequest,
) (*DeleteEncounterResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	if _, err := h.encounterService.DeleteEncounter(ctx, &encounter.DeleteEncounterInput{
		EncounterID: req.EncounterID,
		UserID:      userID,
	}); err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &DeleteEncounterResponse{}, nil
}

// AddParticipant adds a combatant to the roster
func (h *EncounterHandler) AddParticipant(
	ctx context.Context,
	req *AddParticipantRequest,
) (*AddParticipantResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.AddParticipant(ctx, &encounter.AddParticipantInput{
		EncounterID: req.EncounterID,
		UserID:      userID,
		Participant: req.Participant.ToData(),
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &AddParticipantResponse{
		Encounter:     out.Encounter,
		ParticipantID: out.ParticipantID,
	}, nil
}

// UpdateParticipant patches one roster entry
func (h *EncounterHandler) UpdateParticipant(
	ctx context.Context,
	req *UpdateParticipantRequest,
) (*UpdateParticipantResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.UpdateParticipant(ctx, &encounter.UpdateParticipantInput{
		EncounterID:   req.EncounterID,
		ParticipantID: req.ParticipantID,
		UserID:        userID,
		Patch:         req.Patch.ToPatch(),
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &UpdateParticipantResponse{Encounter: out.Encounter}, nil
}

// RemoveParticipant drops a combatant from the roster
func (h *EncounterHandler) RemoveParticipant(
	ctx context.Context,
	req *RemoveParticipantRequest,
) (*RemoveParticipantResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.RemoveParticipant(ctx, &encounter.RemoveParticipantInput{
		EncounterID:   req.EncounterID,
		ParticipantID: req.ParticipantID,
		UserID:        userID,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &RemoveParticipantResponse{Encounter: out.Encounter}, nil
}

// UpdateParticipantHP applies damage, healing and overrides
func (h *EncounterHandler) UpdateParticipantHP(
	ctx context.Context,
	req *UpdateParticipantHPRequest,
) (*UpdateParticipantHPResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.UpdateParticipantHP(ctx, &encounter.UpdateParticipantHPInput{
		EncounterID:   req.EncounterID,
		ParticipantID: req.ParticipantID,
		UserID:        userID,
		CurrentHP:     req.CurrentHP,
		TempHP:        req.TempHP,
		Damage:        req.Damage,
		Healing:       req.Healing,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &UpdateParticipantHPResponse{Encounter: out.Encounter}, nil
}

// AddLairAction attaches a lair action
func (h *EncounterHandler) AddLairAction(
	ctx context.Context,
	req *AddLairActionRequest,
) (*AddLairActionResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.AddLairAction(ctx, &encounter.AddLairActionInput{
		EncounterID: req.EncounterID,
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &AddLairActionResponse{
		Encounter:    out.Encounter,
		LairActionID: out.LairActionID,
	}, nil
}

// StartCombat begins round one
func (h *EncounterHandler) StartCombat(
	ctx context.Context,
	req *StartCombatRequest,
) (*StartCombatResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.StartCombat(ctx, &encounter.StartCombatInput{
		EncounterID: req.EncounterID,
		UserID:      userID,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &StartCombatResponse{Encounter: out.Encounter}, nil
}

// EndCombat completes the encounter
func (h *EncounterHandler) EndCombat(
	ctx context.Context,
	req *EndCombatRequest,
) (*EndCombatResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.EndCombat(ctx, &encounter.EndCombatInput{
		EncounterID: req.EncounterID,
		UserID:      userID,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &EndCombatResponse{Encounter: out.Encounter}, nil
}

// NextTurn hands the turn to the next participant in initiative order
func (h *EncounterHandler) NextTurn(
	ctx context.Context,
	req *NextTurnRequest,
) (*NextTurnResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.NextTurn(ctx, &encounter.NextTurnInput{
		EncounterID: req.EncounterID,
		UserID:      userID,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &NextTurnResponse{
		Encounter:            out.Encounter,
		CurrentParticipantID: out.CurrentParticipantID,
	}, nil
}

// GetInitiativeOrder lists active participants in turn order
func (h *EncounterHandler) GetInitiativeOrder(
	ctx context.Context,
	req *GetInitiativeOrderRequest,
) (*GetInitiativeOrderResponse, error) {
	userID, err := UserIDFromContext(ctx)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.encounterService.GetInitiativeOrder(ctx, &encounter.GetInitiativeOrderInput{
		EncounterID: req.EncounterID,
		UserID:      userID,
	})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &GetInitiativeOrderResponse{
		EncounterID:          out.EncounterID,
		Order:                out.Order,
		Round:                out.Round,
		Turn:                 out.Turn,
		CurrentParticipantID: out.CurrentParticipantID,
	}, nil
}
