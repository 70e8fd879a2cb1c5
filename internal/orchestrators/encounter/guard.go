package encounter

import (
	"context"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
	"github.com/KirkDiggler/rpg-tracker/internal/repositories/encounters"
)

// Guard messages
const (
	ErrMsgNotOwner           = "You do not have permission to access this encounter"
	ErrMsgParticipantMissing = "Participant not found"
	ErrMsgParticipantForeign = "Participant does not belong to this encounter"
)

// errParticipantNotInEncounter is returned from inside a mutation when the
// participant is not in the loaded roster. The orchestrator then works out
// whether it exists elsewhere.
var errParticipantNotInEncounter = errors.NotFound(ErrMsgParticipantMissing)

// checkOwner fails with Unauthorized unless userID owns the encounter
func checkOwner(encounter *entities.Encounter, userID string) error {
	if encounter.OwnerID != userID {
		return errors.Unauthorized(ErrMsgNotOwner).
			WithMeta("encounter_id", encounter.ID)
	}
	return nil
}

// verifyOwnership loads the encounter and checks the caller owns it. Missing
// encounters are NotFound; foreign ones are Unauthorized.
func (o *orchestrator) verifyOwnership(ctx context.Context, encounterID, userID string) (*entities.Encounter, error) {
	out, err := o.repo.Get(ctx, encounters.GetInput{EncounterID: encounterID})
	if err != nil {
		return nil, err
	}

	if err := checkOwner(out.Encounter, userID); err != nil {
		return nil, err
	}

	return out.Encounter, nil
}

// findParticipant returns the participant from the roster or
// errParticipantNotInEncounter
func findParticipant(encounter *entities.Encounter, participantID string) (*entities.Participant, int, error) {
	p, idx := encounter.FindParticipant(participantID)
	if p == nil {
		return nil, -1, errParticipantNotInEncounter
	}
	if p.EncounterID != "" && p.EncounterID != encounter.ID {
		return nil, -1, errors.InvalidArgument(ErrMsgParticipantForeign)
	}
	return p, idx, nil
}

// explainMissingParticipant turns errParticipantNotInEncounter into either
// NotFound or InvalidArgument depending on whether the participant lives in
// another encounter
func (o *orchestrator) explainMissingParticipant(ctx context.Context, encounterID, participantID string) error {
	out, err := o.repo.FindParticipant(ctx, encounters.FindParticipantInput{ParticipantID: participantID})
	if err != nil {
		if errors.IsNotFound(err) {
			return errors.NotFound(ErrMsgParticipantMissing).
				WithMeta("participant_id", participantID)
		}
		return err
	}

	if out.EncounterID != encounterID {
		return errors.InvalidArgument(ErrMsgParticipantForeign).
			WithMeta("participant_id", participantID)
	}

	// It was added between our read and this lookup
	return errors.NotFound(ErrMsgParticipantMissing).
		WithMeta("participant_id", participantID)
}
