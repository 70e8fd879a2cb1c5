package encounter

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-tracker/internal/engine/combat"
	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
)

func (o *orchestrator) StartCombat(ctx context.Context, input *StartCombatInput) (_ *StartCombatOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "StartCombat", input.EncounterID, input.UserID)
	defer func() { finishSpan(span, err) }()

	encounter, err := o.mutate(ctx, "start combat", input.EncounterID, input.UserID, combat.StartCombat)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "combat started",
		"encounter_id", encounter.ID,
		"participants", len(encounter.Participants))

	return &StartCombatOutput{Encounter: encounter}, nil
}

func (o *orchestrator) EndCombat(ctx context.Context, input *EndCombatInput) (_ *EndCombatOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "EndCombat", input.EncounterID, input.UserID)
	defer func() { finishSpan(span, err) }()

	encounter, err := o.mutate(ctx, "end combat", input.EncounterID, input.UserID, func(e *entities.Encounter) error {
		combat.EndCombat(e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "combat ended",
		"encounter_id", encounter.ID,
		"round", encounter.Round)

	return &EndCombatOutput{Encounter: encounter}, nil
}

func (o *orchestrator) NextTurn(ctx context.Context, input *NextTurnInput) (_ *NextTurnOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "NextTurn", input.EncounterID, input.UserID)
	defer func() { finishSpan(span, err) }()

	encounter, err := o.mutate(ctx, "advance turn", input.EncounterID, input.UserID, combat.NextTurn)
	if err != nil {
		return nil, err
	}

	output := &NextTurnOutput{Encounter: encounter}
	actorType := ""
	if actor := combat.CurrentActor(encounter); actor != nil {
		output.CurrentParticipantID = actor.GetID()
		actorType = actor.GetType()
	}

	slog.DebugContext(ctx, "turn advanced",
		"encounter_id", encounter.ID,
		"round", encounter.Round,
		"turn", encounter.Turn,
		"current_participant_id", output.CurrentParticipantID,
		"current_participant_type", actorType)

	return output, nil
}

func (o *orchestrator) GetInitiativeOrder(ctx context.Context, input *GetInitiativeOrderInput) (_ *GetInitiativeOrderOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "GetInitiativeOrder", input.EncounterID, input.UserID)
	defer func() { finishSpan(span, err) }()

	if err := requireIDs(input.EncounterID, input.UserID); err != nil {
		return nil, err
	}

	encounter, err := o.verifyOwnership(ctx, input.EncounterID, input.UserID)
	if err != nil {
		return nil, storageError("get initiative order", err)
	}

	output := &GetInitiativeOrderOutput{
		EncounterID: encounter.ID,
		Order:       combat.InitiativeOrder(encounter.Participants),
		Round:       encounter.Round,
		Turn:        encounter.Turn,
	}
	if encounter.Status == entities.EncounterStatusActive {
		if actor := combat.CurrentActor(encounter); actor != nil {
			output.CurrentParticipantID = actor.GetID()
		}
	}

	return output, nil
}
