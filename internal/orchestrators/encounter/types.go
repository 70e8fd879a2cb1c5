package encounter

import "github.com/KirkDiggler/rpg-tracker/internal/entities"

// StatusUpdateMode controls how UpdateEncounter treats a requested status
type StatusUpdateMode string

const (
	// StatusUpdateGuarded routes status changes through the combat lifecycle
	StatusUpdateGuarded StatusUpdateMode = "guarded"
	// StatusUpdateDirect writes the status as given, with no transition checks
	StatusUpdateDirect StatusUpdateMode = "direct"
)

// IsValid reports whether m is a known mode
func (m StatusUpdateMode) IsValid() bool {
	return m == StatusUpdateGuarded || m == StatusUpdateDirect
}

// CreateEncounterInput defines the request for creating an encounter
type CreateEncounterInput struct {
	OwnerID     string
	Name        string
	Description *string
}

// CreateEncounterOutput defines the response for creating an encounter
type CreateEncounterOutput struct {
	Encounter *entities.Encounter
}

// GetEncounterInput defines the request for reading an encounter.
// An empty UserID skips the ownership check and turns a missing encounter
// into a nil result instead of NotFound.
type GetEncounterInput struct {
	EncounterID string
	UserID      string
}

// GetEncounterOutput defines the response for reading an encounter.
// Encounter is nil only for an unauthenticated read of an unknown ID.
type GetEncounterOutput struct {
	Encounter *entities.Encounter
}

// ListUserEncountersInput defines the request for listing a user's encounters
type ListUserEncountersInput struct {
	OwnerID string
}

// ListUserEncountersOutput defines the response for listing a user's encounters
type ListUserEncountersOutput struct {
	Encounters []*entities.Encounter
}

// UpdateEncounterInput is a partial update; nil fields are left alone
type UpdateEncounterInput struct {
	EncounterID string
	UserID      string
	Name        *string
	Description *string
	Status      *entities.EncounterStatus
}

// UpdateEncounterOutput defines the response for updating an encounter
type UpdateEncounterOutput struct {
	Encounter *entities.Encounter
}

// DeleteEncounterInput defines the request for deleting an encounter
type DeleteEncounterInput struct {
	EncounterID string
	UserID      string
}

// DeleteEncounterOutput defines the response for deleting an encounter
type DeleteEncounterOutput struct{}

// ParticipantData describes a combatant to add.
//
// A nil Initiative means roll for it: d20 + InitiativeModifier, with the raw
// die kept as the tie-breaker. A nil CurrentHP starts the participant at
// MaxHP. A nil IsActive means active.
type ParticipantData struct {
	Type               entities.ParticipantType
	CharacterID        *string
	CreatureID         *string
	Name               string
	Initiative         *int
	InitiativeModifier int
	InitiativeRoll     *int
	CurrentHP          *int
	MaxHP              int
	TempHP             int
	AC                 int
	Conditions         []string
	IsActive           *bool
	Notes              *string
}

// AddParticipantInput defines the request for adding a participant
type AddParticipantInput struct {
	EncounterID string
	UserID      string
	Participant ParticipantData
}

// AddParticipantOutput returns the refreshed encounter and the new participant's ID
type AddParticipantOutput struct {
	Encounter     *entities.Encounter
	ParticipantID string
}

// ParticipantPatch is a partial participant update; nil fields are left
// alone. A non-nil empty Conditions clears them.
type ParticipantPatch struct {
	Name           *string
	Initiative     *int
	InitiativeRoll *int
	AC             *int
	MaxHP          *int
	Conditions     []string
	Notes          *string
	IsActive       *bool
}

// UpdateParticipantInput defines the request for patching a participant
type UpdateParticipantInput struct {
	EncounterID   string
	ParticipantID string
	UserID        string
	Patch         ParticipantPatch
}

// UpdateParticipantOutput defines the response for patching a participant
type UpdateParticipantOutput struct {
	Encounter *entities.Encounter
}

// RemoveParticipantInput defines the request for removing a participant
type RemoveParticipantInput struct {
	EncounterID   string
	ParticipantID string
	UserID        string
}

// RemoveParticipantOutput defines the response for removing a participant
type RemoveParticipantOutput struct {
	Encounter *entities.Encounter
}

// UpdateParticipantHPInput adjusts hit points. Damage then healing are
// applied to the stored value; an absolute CurrentHP overrides both.
type UpdateParticipantHPInput struct {
	EncounterID   string
	ParticipantID string
	UserID        string
	CurrentHP     *int
	TempHP        *int
	Damage        *int
	Healing       *int
}

// UpdateParticipantHPOutput defines the response for a hit point change
type UpdateParticipantHPOutput struct {
	Encounter *entities.Encounter
}

// AddLairActionInput defines the request for adding a lair action
type AddLairActionInput struct {
	EncounterID string
	UserID      string
	Name        string
	Description *string
}

// AddLairActionOutput defines the response for adding a lair action
type AddLairActionOutput struct {
	Encounter    *entities.Encounter
	LairActionID string
}

// StartCombatInput defines the request for starting combat
type StartCombatInput struct {
	EncounterID string
	UserID      string
}

// StartCombatOutput defines the response for starting combat
type StartCombatOutput struct {
	Encounter *entities.Encounter
}

// EndCombatInput defines the request for ending combat
type EndCombatInput struct {
	EncounterID string
	UserID      string
}

// EndCombatOutput defines the response for ending combat
type EndCombatOutput struct {
	Encounter *entities.Encounter
}

// NextTurnInput defines the request for advancing the turn
type NextTurnInput struct {
	EncounterID string
	UserID      string
}

// NextTurnOutput returns the refreshed encounter and whose turn it is now
type NextTurnOutput struct {
	Encounter            *entities.Encounter
	CurrentParticipantID string
}

// GetInitiativeOrderInput defines the request for the turn order
type GetInitiativeOrderInput struct {
	EncounterID string
	UserID      string
}

// GetInitiativeOrderOutput lists active participants in turn order.
// CurrentParticipantID is only set while combat is ACTIVE.
type GetInitiativeOrderOutput struct {
	EncounterID          string
	Order                []*entities.Participant
	Round                int
	Turn                 int
	CurrentParticipantID string
}
