package v1alpha1

import (
	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/orchestrators/encounter"
)

// CreateEncounterRequest creates an encounter owned by the caller
type CreateEncounterRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// CreateEncounterResponse carries the new encounter
type CreateEncounterResponse struct {
	Encounter *entities.Encounter `json:"encounter"`
}

// GetEncounterRequest reads one encounter
type GetEncounterRequest struct {
	EncounterID string `json:"encounter_id"`
}

// GetEncounterResponse carries the encounter
type GetEncounterResponse struct {
	Encounter *entities.Encounter `json:"encounter"`
}

// ListEncountersRequest lists the caller's encounters
type ListEncountersRequest struct{}

// ListEncountersResponse lists encounters, most recently updated first
type ListEncountersResponse struct {
	Encounters []*entities.Encounter `json:"encounters"`
}

// UpdateEncounterRequest is a partial update; omitted fields are left alone
type UpdateEncounterRequest struct {
	EncounterID string  `json:"encounter_id"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// UpdateEncounterResponse carries the updated encounter
type UpdateEncounterResponse struct {
	Encounter *entities.Encounter `json:"encounter"`
}

// DeleteEncounterRequest deletes an encounter and its roster
type DeleteEncounterRequest struct {
	EncounterID string `json:"encounter_id"`
}

// DeleteEncounterResponse is empty on success
type DeleteEncounterResponse struct{}

// Participant describes a combatant to add. Omitting initiative rolls it.
type Participant struct {
	Type               string   `json:"type"`
	CharacterID        *string  `json:"character_id,omitempty"`
	CreatureID         *string  `json:"creature_id,omitempty"`
	Name               string   `json:"name"`
	Initiative         *int     `json:"initiative,omitempty"`
	InitiativeModifier int      `json:"initiative_modifier,omitempty"`
	InitiativeRoll     *int     `json:"initiative_roll,omitempty"`
	CurrentHP          *int     `json:"current_hp,omitempty"`
	MaxHP              int      `json:"max_hp"`
	TempHP             int      `json:"temp_hp,omitempty"`
	AC                 int      `json:"ac"`
	Conditions         []string `json:"conditions,omitempty"`
	IsActive           *bool    `json:"is_active,omitempty"`
	Notes              *string  `json:"notes,omitempty"`
}

// ToData converts the wire participant into orchestrator input
func (p *Participant) ToData() encounter.ParticipantData {
	return encounter.ParticipantData{
		Type:               entities.ParticipantType(p.Type),
		CharacterID:        p.CharacterID,
		CreatureID:         p.CreatureID,
		Name:               p.Name,
		Initiative:         p.Initiative,
		InitiativeModifier: p.InitiativeModifier,
		InitiativeRoll:     p.InitiativeRoll,
		CurrentHP:          p.CurrentHP,
		MaxHP:              p.MaxHP,
		TempHP:             p.TempHP,
		AC:                 p.AC,
		Conditions:         p.Conditions,
		IsActive:           p.IsActive,
		Notes:              p.Notes,
	}
}

// AddParticipantRequest adds a combatant to an encounter
type AddParticipantRequest struct {
	EncounterID string      `json:"encounter_id"`
	Participant Participant `json:"participant"`
}

// AddParticipantResponse carries the encounter and the new participant's ID
type AddParticipantResponse struct {
	Encounter     *entities.Encounter `json:"encounter"`
	ParticipantID string              `json:"participant_id"`
}

// ParticipantPatch changes only the fields that are present. An empty
// conditions list clears them.
type ParticipantPatch struct {
	Name           *string  `json:"name,omitempty"`
	Initiative     *int     `json:"initiative,omitempty"`
	InitiativeRoll *int     `json:"initiative_roll,omitempty"`
	AC             *int     `json:"ac,omitempty"`
	MaxHP          *int     `json:"max_hp,omitempty"`
	Conditions     []string `json:"conditions"`
	Notes          *string  `json:"notes,omitempty"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

// ToPatch converts the wire patch into orchestrator input
func (p *ParticipantPatch) ToPatch() encounter.ParticipantPatch {
	return encounter.ParticipantPatch{
		Name:           p.Name,
		Initiative:     p.Initiative,
		InitiativeRoll: p.InitiativeRoll,
		AC:             p.AC,
		MaxHP:          p.MaxHP,
		Conditions:     p.Conditions,
		Notes:          p.Notes,
		IsActive:       p.IsActive,
	}
}

// UpdateParticipantRequest patches one participant
type UpdateParticipantRequest struct {
	EncounterID   string           `json:"encounter_id"`
	ParticipantID string           `json:"participant_id"`
	Patch         ParticipantPatch `json:"patch"`
}

// UpdateParticipantResponse carries the updated encounter
type UpdateParticipantResponse struct {
	Encounter *entities.Encounter `json:"encounter"`
}

// RemoveParticipantRequest drops a participant from the roster
type RemoveParticipantRequest struct {
	EncounterID   string `json:"encounter_id"`
	ParticipantID string `json:"participant_id"`
}

// RemoveParticipantResponse carries the updated encounter
type RemoveParticipantResponse struct {
	Encounter *entities.Encounter `json:"encounter"`
}

// UpdateParticipantHPRequest applies damage, then healing, then an
// absolute override
type UpdateParticipantHPRequest struct {
	EncounterID   string `json:"encounter_id"`
	ParticipantID string `json:"participant_id"`
	CurrentHP     *int   `json:"current_hp,omitempty"`
	TempHP        *int   `json:"temp_hp,omitempty"`
	Damage        *int   `json:"damage,omitempty"`
	Healing       *int   `json:"healing,omitempty"`
}

// UpdateParticipantHPResponse carries the updated encounter
type UpdateParticipantHPResponse struct {
	Encounter *entities.Encounter `json:"encounter"`
}

// AddLairActionRequest attaches a lair action to an encounter
type AddLairActionRequest struct {
	EncounterID string  `json:"encounter_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// AddLairActionResponse carries the encounter and the new lair action's ID
type AddLairActionResponse struct {
	Encounter    *entities.Encounter `json:"encounter"`
	LairActionID string              `json:"lair_action_id"`
}

// StartCombatRequest moves an encounter into ACTIVE
type StartCombatRequest struct {
	EncounterID string `json:"encounter_id"`
}

// StartCombatResponse carries the updated encounter
type StartCombatResponse struct {
	Encounter *entities.Encounter `json:"encounter"`
}

// EndCombatRequest moves an encounter into COMPLETED
type EndCombatRequest struct {
	EncounterID string `json:"encounter_id"`
}

// EndCombatResponse carries the updated encounter
type EndCombatResponse struct {
	Encounter *entities.Encounter `json:"encounter"`
}

// NextTurnRequest advances the turn
type NextTurnRequest struct {
	EncounterID string `json:"encounter_id"`
}

// NextTurnResponse carries the encounter and whose turn it is
type NextTurnResponse struct {
	Encounter            *entities.Encounter `json:"encounter"`
	CurrentParticipantID string              `json:"current_participant_id,omitempty"`
}

// GetInitiativeOrderRequest reads the turn order
type GetInitiativeOrderRequest struct {
	EncounterID string `json:"encounter_id"`
}

// GetInitiativeOrderResponse lists active participants in turn order
type GetInitiativeOrderResponse struct {
	EncounterID          string                  `json:"encounter_id"`
	Order                []*entities.Participant `json:"order"`
	Round                int                     `json:"round"`
	Turn                 int                     `json:"turn"`
	CurrentParticipantID string                  `json:"current_participant_id,omitempty"`
}
