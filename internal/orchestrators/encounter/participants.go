package encounter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/rpg-tracker/internal/engine/combat"
	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
)

func (o *orchestrator) AddParticipant(ctx context.Context, input *AddParticipantInput) (_ *AddParticipantOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "AddParticipant", input.EncounterID, input.UserID)
	defer func() { finishSpan(span, err) }()

	var participantID string
	encounter, err := o.mutate(ctx, "add participant", input.EncounterID, input.UserID, func(e *entities.Encounter) error {
		p, err := o.newParticipant(e.ID, input.Participant)
		if err != nil {
			return err
		}
		e.Participants = append(e.Participants, p)
		participantID = p.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "participant added",
		"encounter_id", encounter.ID,
		"participant_id", participantID,
		"roster_size", len(encounter.Participants))

	return &AddParticipantOutput{Encounter: encounter, ParticipantID: participantID}, nil
}

func (o *orchestrator) UpdateParticipant(ctx context.Context, input *UpdateParticipantInput) (_ *UpdateParticipantOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "UpdateParticipant", input.EncounterID, input.UserID)
	defer func() { finishSpan(span, err) }()

	encounter, err := o.mutateParticipant(ctx, "update participant", input.EncounterID, input.ParticipantID, input.UserID,
		func(e *entities.Encounter, p *entities.Participant, _ int) error {
			if err := applyPatch(p, input.Patch); err != nil {
				return err
			}
			combat.ClampTurn(e)
			return nil
		})
	if err != nil {
		return nil, err
	}

	return &UpdateParticipantOutput{Encounter: encounter}, nil
}

func (o *orchestrator) RemoveParticipant(ctx context.Context, input *RemoveParticipantInput) (_ *RemoveParticipantOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "RemoveParticipant", input.EncounterID, input.UserID)
	defer func() { finishSpan(span, err) }()

	encounter, err := o.mutateParticipant(ctx, "remove participant", input.EncounterID, input.ParticipantID, input.UserID,
		func(e *entities.Encounter, _ *entities.Participant, idx int) error {
			e.Participants = append(e.Participants[:idx], e.Participants[idx+1:]...)
			combat.ClampTurn(e)
			return nil
		})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "participant removed",
		"encounter_id", input.EncounterID,
		"participant_id", input.ParticipantID)

	return &RemoveParticipantOutput{Encounter: encounter}, nil
}

func (o *orchestrator) UpdateParticipantHP(ctx context.Context, input *UpdateParticipantHPInput) (_ *UpdateParticipantHPOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "UpdateParticipantHP", input.EncounterID, input.UserID)
	defer func() { finishSpan(span, err) }()

	encounter, err := o.mutateParticipant(ctx, "update participant hp", input.EncounterID, input.ParticipantID, input.UserID,
		func(e *entities.Encounter, p *entities.Participant, _ int) error {
			vb := errors.NewValidationBuilder()
			if input.Damage != nil {
				errors.ValidateMin("damage", *input.Damage, 0, vb)
			}
			if input.Healing != nil {
				errors.ValidateMin("healing", *input.Healing, 0, vb)
			}
			if err := vb.Build(); err != nil {
				return err
			}

			combat.ApplyHPChange(p, combat.HPChange{
				CurrentHP: input.CurrentHP,
				TempHP:    input.TempHP,
				Damage:    input.Damage,
				Healing:   input.Healing,
			})
			return nil
		})
	if err != nil {
		return nil, err
	}

	return &UpdateParticipantHPOutput{Encounter: encounter}, nil
}

func (o *orchestrator) AddLairAction(ctx context.Context, input *AddLairActionInput) (_ *AddLairActionOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "AddLairAction", input.EncounterID, input.UserID)
	defer func() { finishSpan(span, err) }()

	var lairActionID string
	encounter, err := o.mutate(ctx, "add lair action", input.EncounterID, input.UserID, func(e *entities.Encounter) error {
		name := strings.TrimSpace(input.Name)

		vb := errors.NewValidationBuilder()
		errors.ValidateRequired("name", name, vb)
		errors.ValidateMaxLength("name", name, MaxNameLength, vb)
		if err := vb.Build(); err != nil {
			return err
		}

		lairActionID = o.participantIDs.Generate()
		e.LairActions = append(e.LairActions, &entities.LairAction{
			ID:          lairActionID,
			EncounterID: e.ID,
			Name:        name,
			Description: normalizeText(input.Description),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &AddLairActionOutput{Encounter: encounter, LairActionID: lairActionID}, nil
}

// mutateParticipant is mutate for operations on one roster entry. A
// participant missing from the roster is reported as NotFound, or as
// InvalidArgument when it belongs to another encounter.
func (o *orchestrator) mutateParticipant(
	ctx context.Context,
	op string,
	encounterID, participantID, userID string,
	fn func(e *entities.Encounter, p *entities.Participant, idx int) error,
) (*entities.Encounter, error) {
	if participantID == "" {
		return nil, errors.InvalidArgument("Participant ID is required")
	}

	encounter, err := o.mutate(ctx, op, encounterID, userID, func(e *entities.Encounter) error {
		p, idx, err := findParticipant(e, participantID)
		if err != nil {
			return err
		}
		return fn(e, p, idx)
	})
	if err == errParticipantNotInEncounter {
		return nil, storageError(op, o.explainMissingParticipant(ctx, encounterID, participantID))
	}

	return encounter, err
}

// newParticipant validates the data and builds a roster entry, rolling
// initiative when none was given
func (o *orchestrator) newParticipant(encounterID string, data ParticipantData) (*entities.Participant, error) {
	name := strings.TrimSpace(data.Name)

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("name", name, vb)
	errors.ValidateMaxLength("name", name, MaxNameLength, vb)
	errors.ValidateMin("max_hp", data.MaxHP, 0, vb)
	errors.ValidateMin("ac", data.AC, 0, vb)

	switch data.Type {
	case entities.ParticipantTypeCharacter:
		if data.CharacterID == nil || strings.TrimSpace(*data.CharacterID) == "" {
			vb.Field("character_id", "is required for CHARACTER participants")
		}
	case entities.ParticipantTypeCreature:
	default:
		vb.Fieldf("type", "must be %s or %s", entities.ParticipantTypeCharacter, entities.ParticipantTypeCreature)
	}

	if err := vb.Build(); err != nil {
		return nil, err
	}

	p := &entities.Participant{
		ID:             o.participantIDs.Generate(),
		EncounterID:    encounterID,
		Type:           data.Type,
		Name:           name,
		InitiativeRoll: data.InitiativeRoll,
		MaxHP:          data.MaxHP,
		TempHP:         max(0, data.TempHP),
		AC:             data.AC,
		Conditions:     append([]string{}, data.Conditions...),
		IsActive:       true,
		Notes:          normalizeText(data.Notes),
	}

	switch data.Type {
	case entities.ParticipantTypeCharacter:
		p.CharacterID = normalizeText(data.CharacterID)
	case entities.ParticipantTypeCreature:
		p.CreatureID = normalizeText(data.CreatureID)
	}

	if data.Initiative != nil {
		p.Initiative = *data.Initiative
	} else {
		total, roll, err := combat.RollInitiative(o.roller, data.InitiativeModifier)
		if err != nil {
			return nil, err
		}
		p.Initiative = total
		p.InitiativeRoll = &roll
	}

	p.CurrentHP = p.MaxHP
	if data.CurrentHP != nil {
		p.CurrentHP = combat.ClampHP(*data.CurrentHP, p.MaxHP)
	}

	if data.IsActive != nil {
		p.IsActive = *data.IsActive
	}

	return p, nil
}

// applyPatch writes the non-nil patch fields onto p
func applyPatch(p *entities.Participant, patch ParticipantPatch) error {
	vb := errors.NewValidationBuilder()

	var name string
	if patch.Name != nil {
		name = strings.TrimSpace(*patch.Name)
		errors.ValidateRequired("name", name, vb)
		errors.ValidateMaxLength("name", name, MaxNameLength, vb)
	}
	if patch.MaxHP != nil {
		errors.ValidateMin("max_hp", *patch.MaxHP, 0, vb)
	}
	if patch.AC != nil {
		errors.ValidateMin("ac", *patch.AC, 0, vb)
	}
	if err := vb.Build(); err != nil {
		return err
	}

	if patch.Name != nil {
		p.Name = name
	}
	if patch.Initiative != nil {
		p.Initiative = *patch.Initiative
	}
	if patch.InitiativeRoll != nil {
		roll := *patch.InitiativeRoll
		p.InitiativeRoll = &roll
	}
	if patch.AC != nil {
		p.AC = *patch.AC
	}
	if patch.MaxHP != nil {
		p.MaxHP = *patch.MaxHP
		p.CurrentHP = combat.ClampHP(p.CurrentHP, p.MaxHP)
	}
	if patch.Conditions != nil {
		p.Conditions = append([]string{}, patch.Conditions...)
	}
	if patch.Notes != nil {
		p.Notes = normalizeText(patch.Notes)
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}

	return nil
}
