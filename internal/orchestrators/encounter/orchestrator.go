// Package encounter is the encounter engine: it owns the create, read,
// update and delete paths for encounters, the roster, and the combat
// lifecycle. Every mutation checks ownership and runs as one atomic
// read-modify-write against the repository.
package encounter

//go:generate mockgen -destination=mock/mock_service.go -package=encountermock github.com/KirkDiggler/rpg-tracker/internal/orchestrators/encounter Service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-tracker/internal/engine/combat"
	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
	"github.com/KirkDiggler/rpg-tracker/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-tracker/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-tracker/internal/repositories/encounters"
)

// MaxNameLength bounds encounter, participant and lair action names
const MaxNameLength = 100

// Validation messages
const (
	ErrMsgNameRequired  = "Encounter name is required"
	ErrMsgNameTooLong   = "Encounter name must be 100 characters or less"
	ErrMsgOwnerRequired = "Owner ID is required"
	ErrMsgUserRequired  = "User ID is required"
	ErrMsgIDRequired    = "Encounter ID is required"
)

// Service defines the interface for encounter operations
type Service interface {
	CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*CreateEncounterOutput, error)
	GetEncounter(ctx context.Context, input *GetEncounterInput) (*GetEncounterOutput, error)
	ListUserEncounters(ctx context.Context, input *ListUserEncountersInput) (*ListUserEncountersOutput, error)
	UpdateEncounter(ctx context.Context, input *UpdateEncounterInput) (*UpdateEncounterOutput, error)
	DeleteEncounter(ctx context.Context, input *DeleteEncounterInput) (*DeleteEncounterOutput, error)

	// Roster
	AddParticipant(ctx context.Context, input *AddParticipantInput) (*AddParticipantOutput, error)
	UpdateParticipant(ctx context.Context, input *UpdateParticipantInput) (*UpdateParticipantOutput, error)
	RemoveParticipant(ctx context.Context, input *RemoveParticipantInput) (*RemoveParticipantOutput, error)
	UpdateParticipantHP(ctx context.Context, input *UpdateParticipantHPInput) (*UpdateParticipantHPOutput, error)
	AddLairAction(ctx context.Context, input *AddLairActionInput) (*AddLairActionOutput, error)

	// Combat
	StartCombat(ctx context.Context, input *StartCombatInput) (*StartCombatOutput, error)
	EndCombat(ctx context.Context, input *EndCombatInput) (*EndCombatOutput, error)
	NextTurn(ctx context.Context, input *NextTurnInput) (*NextTurnOutput, error)
	GetInitiativeOrder(ctx context.Context, input *GetInitiativeOrderInput) (*GetInitiativeOrderOutput, error)
}

// Config holds the dependencies for the encounter orchestrator
type Config struct {
	Repository  encounters.Repository
	IDGenerator idgen.Generator

	// Optional. Defaults to IDGenerator.
	ParticipantIDGenerator idgen.Generator
	// Optional. Defaults to the real clock.
	Clock clock.Clock
	// Optional. Defaults to the toolkit's crypto roller.
	DiceRoller dice.Roller
	// Optional. Defaults to StatusUpdateGuarded.
	StatusUpdateMode StatusUpdateMode
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()

	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.StatusUpdateMode != "" && !c.StatusUpdateMode.IsValid() {
		vb.Fieldf("StatusUpdateMode", "must be %q or %q", StatusUpdateGuarded, StatusUpdateDirect)
	}

	return vb.Build()
}

type orchestrator struct {
	repo           encounters.Repository
	idGen          idgen.Generator
	participantIDs idgen.Generator
	clock          clock.Clock
	roller         dice.Roller
	statusMode     StatusUpdateMode
}

// NewOrchestrator creates a new encounter orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		repo:           cfg.Repository,
		idGen:          cfg.IDGenerator,
		participantIDs: cfg.ParticipantIDGenerator,
		clock:          cfg.Clock,
		roller:         cfg.DiceRoller,
		statusMode:     cfg.StatusUpdateMode,
	}
	if o.participantIDs == nil {
		o.participantIDs = cfg.IDGenerator
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if o.roller == nil {
		o.roller = dice.DefaultRoller
	}
	if o.statusMode == "" {
		o.statusMode = StatusUpdateGuarded
	}

	return o, nil
}

func (o *orchestrator) CreateEncounter(ctx context.Context, input *CreateEncounterInput) (_ *CreateEncounterOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "CreateEncounter", "", input.OwnerID)
	defer func() { finishSpan(span, err) }()

	if input.OwnerID == "" {
		return nil, errors.InvalidArgument(ErrMsgOwnerRequired)
	}
	name, err := validateEncounterName(input.Name)
	if err != nil {
		return nil, err
	}

	now := o.clock.Now()
	encounter := &entities.Encounter{
		ID:           o.idGen.Generate(),
		OwnerID:      input.OwnerID,
		Name:         name,
		Description:  normalizeText(input.Description),
		Round:        1,
		Turn:         0,
		Participants: []*entities.Participant{},
		LairActions:  []*entities.LairAction{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	encounter.SetStatus(entities.EncounterStatusPlanning)

	out, err := o.repo.Create(ctx, encounters.CreateInput{Encounter: encounter})
	if err != nil {
		return nil, storageError("create encounter", err)
	}

	slog.InfoContext(ctx, "encounter created",
		"encounter_id", out.Encounter.ID,
		"owner_id", out.Encounter.OwnerID)

	return &CreateEncounterOutput{Encounter: out.Encounter}, nil
}

func (o *orchestrator) GetEncounter(ctx context.Context, input *GetEncounterInput) (_ *GetEncounterOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "GetEncounter", input.EncounterID, input.UserID)
	defer func() { finishSpan(span, err) }()

	if input.EncounterID == "" {
		return nil, errors.InvalidArgument(ErrMsgIDRequired)
	}

	var encounter *entities.Encounter
	if input.UserID == "" {
		// unauthenticated reads report a missing encounter as a nil result
		var out *encounters.GetOutput
		out, err = o.repo.Get(ctx, encounters.GetInput{EncounterID: input.EncounterID})
		if errors.IsNotFound(err) {
			return &GetEncounterOutput{}, nil
		}
		if out != nil {
			encounter = out.Encounter
		}
	} else {
		encounter, err = o.verifyOwnership(ctx, input.EncounterID, input.UserID)
	}
	if err != nil {
		return nil, storageError("get encounter", err)
	}

	return &GetEncounterOutput{Encounter: encounter}, nil
}

func (o *orchestrator) ListUserEncounters(ctx context.Context, input *ListUserEncountersInput) (_ *ListUserEncountersOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "ListUserEncounters", "", input.OwnerID)
	defer func() { finishSpan(span, err) }()

	if input.OwnerID == "" {
		return nil, errors.InvalidArgument(ErrMsgOwnerRequired)
	}

	out, err := o.repo.ListByOwner(ctx, encounters.ListByOwnerInput{OwnerID: input.OwnerID})
	if err != nil {
		return nil, storageError("list encounters", err)
	}

	slog.DebugContext(ctx, "listed encounters",
		"owner_id", input.OwnerID,
		"count", len(out.Encounters))

	return &ListUserEncountersOutput{Encounters: out.Encounters}, nil
}

func (o *orchestrator) UpdateEncounter(ctx context.Context, input *UpdateEncounterInput) (_ *UpdateEncounterOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "UpdateEncounter", input.EncounterID, input.UserID)
	defer func() { finishSpan(span, err) }()

	encounter, err := o.mutate(ctx, "update encounter", input.EncounterID, input.UserID, func(e *entities.Encounter) error {
		if input.Name != nil {
			name, err := validateEncounterName(*input.Name)
			if err != nil {
				return err
			}
			e.Name = name
		}

		if input.Description != nil {
			e.Description = normalizeText(input.Description)
		}

		if input.Status != nil {
			if o.statusMode == StatusUpdateDirect {
				return combat.ForceStatus(e, *input.Status)
			}
			return combat.TransitionTo(e, *input.Status)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &UpdateEncounterOutput{Encounter: encounter}, nil
}

func (o *orchestrator) DeleteEncounter(ctx context.Context, input *DeleteEncounterInput) (_ *DeleteEncounterOutput, err error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	ctx, span := startSpan(ctx, "DeleteEncounter", input.EncounterID, input.UserID)
	defer func() { finishSpan(span, err) }()

	if err := requireIDs(input.EncounterID, input.UserID); err != nil {
		return nil, err
	}

	if _, err := o.verifyOwnership(ctx, input.EncounterID, input.UserID); err != nil {
		return nil, storageError("delete encounter", err)
	}

	if _, err := o.repo.Delete(ctx, encounters.DeleteInput{EncounterID: input.EncounterID}); err != nil {
		return nil, storageError("delete encounter", err)
	}

	slog.InfoContext(ctx, "encounter deleted",
		"encounter_id", input.EncounterID,
		"user_id", input.UserID)

	return &DeleteEncounterOutput{}, nil
}

// mutate runs fn against the stored encounter after the ownership check, as
// one atomic update. op names the operation in wrapped storage errors.
func (o *orchestrator) mutate(
	ctx context.Context,
	op string,
	encounterID, userID string,
	fn func(e *entities.Encounter) error,
) (*entities.Encounter, error) {
	if err := requireIDs(encounterID, userID); err != nil {
		return nil, err
	}

	out, err := o.repo.Mutate(ctx, encounters.MutateInput{
		EncounterID: encounterID,
		Fn: func(e *entities.Encounter) error {
			if err := checkOwner(e, userID); err != nil {
				return err
			}
			return fn(e)
		},
	})
	if err != nil {
		if errors.IsUnauthorized(err) {
			slog.WarnContext(ctx, "rejected mutation by non-owner",
				"operation", op,
				"encounter_id", encounterID,
				"user_id", userID)
		}
		return nil, storageError(op, err)
	}

	slog.DebugContext(ctx, "encounter updated",
		"operation", op,
		"encounter_id", encounterID,
		"version", out.Encounter.Version)

	return out.Encounter, nil
}

// storageError prefixes infrastructure failures with the operation. Aborted
// only comes from the store giving up on a contended write. Domain errors
// already carry a caller-facing message and pass through untouched.
func storageError(op string, err error) error {
	switch errors.GetCode(err) {
	case errors.CodeInternal, errors.CodeUnavailable, errors.CodeAborted,
		errors.CodeCanceled, errors.CodeDeadlineExceeded:
		return errors.Wrapf(err, "Failed to %s", op)
	default:
		return err
	}
}

func requireIDs(encounterID, userID string) error {
	if encounterID == "" {
		return errors.InvalidArgument(ErrMsgIDRequired)
	}
	if userID == "" {
		return errors.InvalidArgument(ErrMsgUserRequired)
	}
	return nil
}

// validateEncounterName trims the name and enforces 1..100 characters
func validateEncounterName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.InvalidArgument(ErrMsgNameRequired)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", errors.InvalidArgument(ErrMsgNameTooLong)
	}
	return name, nil
}

// normalizeText trims free text; blank becomes nil
func normalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
