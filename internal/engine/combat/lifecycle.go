package combat

import (
	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
)

// Lifecycle error messages
const (
	ErrMsgNoParticipants   = "Cannot start combat with no participants"
	ErrMsgCombatNotActive  = "Combat is not active"
	ErrMsgNobodyInOrder    = "No active participants in initiative order"
	ErrMsgReturnToPlanning = "Cannot return an encounter to planning"
)

// StartCombat moves the encounter into ACTIVE and resets round and turn.
// Only the roster size is checked; starting again from ACTIVE or COMPLETED
// restarts the fight.
func StartCombat(encounter *entities.Encounter) error {
	if len(encounter.Participants) == 0 {
		return errors.InvalidState(ErrMsgNoParticipants)
	}

	encounter.SetStatus(entities.EncounterStatusActive)
	encounter.Round = 1
	encounter.Turn = 0

	return nil
}

// EndCombat marks the encounter COMPLETED from any state. Round and turn are
// left as they were so the final state of the fight is preserved.
func EndCombat(encounter *entities.Encounter) {
	encounter.SetStatus(entities.EncounterStatusCompleted)
}

// NextTurn hands the turn to the next participant in initiative order,
// wrapping into a new round after the last one.
func NextTurn(encounter *entities.Encounter) error {
	if encounter.Status != entities.EncounterStatusActive {
		return errors.InvalidState(ErrMsgCombatNotActive)
	}

	order := InitiativeOrder(encounter.Participants)
	if len(order) == 0 {
		return errors.InvalidState(ErrMsgNobodyInOrder)
	}

	encounter.Turn++
	if encounter.Turn >= len(order) {
		encounter.Turn = 0
		encounter.Round++
	}

	return nil
}

// ClampTurn sends the turn back to the top of the order when the roster
// shrank underneath it
func ClampTurn(encounter *entities.Encounter) {
	if encounter.Turn >= len(InitiativeOrder(encounter.Participants)) {
		encounter.Turn = 0
	}
}

// TransitionTo applies a requested status through the guarded transitions:
// ACTIVE starts combat, COMPLETED ends it, PLANNING is only accepted when the
// encounter has not left it. Requesting the current status is a no-op.
func TransitionTo(encounter *entities.Encounter, status entities.EncounterStatus) error {
	if !status.IsValid() {
		return errors.InvalidArgumentf("unknown encounter status %q", status)
	}
	if encounter.Status == status {
		return nil
	}

	switch status {
	case entities.EncounterStatusActive:
		return StartCombat(encounter)
	case entities.EncounterStatusCompleted:
		EndCombat(encounter)
		return nil
	default:
		return errors.InvalidState(ErrMsgReturnToPlanning)
	}
}

// ForceStatus sets the status without checking any transition rule. IsActive
// still follows the status.
func ForceStatus(encounter *entities.Encounter, status entities.EncounterStatus) error {
	if !status.IsValid() {
		return errors.InvalidArgumentf("unknown encounter status %q", status)
	}

	encounter.SetStatus(status)
	return nil
}
