// Package encounters persists encounter aggregates. Every store offers the
// same atomic read-modify-write through Mutate so concurrent writers to one
// encounter never silently overwrite each other.
package encounters

//go:generate mockgen -destination=mock/mock_repository.go -package=encountersmock github.com/KirkDiggler/rpg-tracker/internal/repositories/encounters Repository

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
)

// MaxMutateAttempts bounds how often Mutate tries before reporting a conflict
const MaxMutateAttempts = 8

// Backoff between conflicting attempts
const (
	retryInitialInterval = 5 * time.Millisecond
	retryMaxInterval     = 100 * time.Millisecond
	retryMaxElapsed      = 2 * time.Second
)

const (
	errEncounterNil     = "encounter cannot be nil"
	errEncounterIDEmpty = "encounter ID cannot be empty"
	errOwnerIDEmpty     = "owner ID cannot be empty"
	errMutateFnNil      = "mutate function cannot be nil"
	errParticipantEmpty = "participant ID cannot be empty"
)

// errConflict signals that the stored version moved between read and write
var errConflict = errors.Aborted("encounter version conflict")

// Repository defines the storage interface for encounters
type Repository interface {
	// Create stores a new encounter. The stored copy starts at version 1.
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves an encounter by ID
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// ListByOwner returns the owner's encounters, most recently updated first
	ListByOwner(ctx context.Context, input ListByOwnerInput) (*ListByOwnerOutput, error)

	// Delete removes an encounter with its participants and lair actions
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// FindParticipant reports which encounter holds a participant
	FindParticipant(ctx context.Context, input FindParticipantInput) (*FindParticipantOutput, error)

	// Mutate loads an encounter, applies Fn to a private copy and stores the
	// result only if nobody else wrote in between. Errors from Fn are
	// returned untouched and nothing is written.
	Mutate(ctx context.Context, input MutateInput) (*MutateOutput, error)
}

// MutateFunc changes an encounter in place
type MutateFunc func(encounter *entities.Encounter) error

// CreateInput defines the request for storing a new encounter
type CreateInput struct {
	Encounter *entities.Encounter
}

// CreateOutput defines the response for storing a new encounter
type CreateOutput struct {
	Encounter *entities.Encounter
}

// GetInput defines the request for retrieving an encounter
type GetInput struct {
	EncounterID string
}

// GetOutput defines the response for retrieving an encounter
type GetOutput struct {
	Encounter *entities.Encounter
}

// ListByOwnerInput defines the request for listing a user's encounters
type ListByOwnerInput struct {
	OwnerID string
}

// ListByOwnerOutput defines the response for listing a user's encounters
type ListByOwnerOutput struct {
	Encounters []*entities.Encounter
}

// DeleteInput defines the request for deleting an encounter
type DeleteInput struct {
	EncounterID string
}

// DeleteOutput defines the response for deleting an encounter
type DeleteOutput struct{}

// FindParticipantInput defines the request for locating a participant
type FindParticipantInput struct {
	ParticipantID string
}

// FindParticipantOutput names the encounter that holds the participant
type FindParticipantOutput struct {
	EncounterID string
}

// MutateInput defines the request for an atomic update
type MutateInput struct {
	EncounterID string
	Fn          MutateFunc
}

// MutateOutput carries the encounter as stored after the update
type MutateOutput struct {
	Encounter *entities.Encounter
}

func validateCreate(input CreateInput) error {
	if input.Encounter == nil {
		return errors.InvalidArgument(errEncounterNil)
	}
	if input.Encounter.ID == "" {
		return errors.InvalidArgument(errEncounterIDEmpty)
	}
	if input.Encounter.OwnerID == "" {
		return errors.InvalidArgument(errOwnerIDEmpty)
	}
	return nil
}

func validateMutate(input MutateInput) error {
	if input.EncounterID == "" {
		return errors.InvalidArgument(errEncounterIDEmpty)
	}
	if input.Fn == nil {
		return errors.InvalidArgument(errMutateFnNil)
	}
	return nil
}

func notFound(encounterID string) error {
	return errors.NotFoundf("encounter with ID %s not found", encounterID)
}

func participantNotFound(participantID string) error {
	return errors.NotFoundf("participant with ID %s not found", participantID)
}

// applyMutation runs fn on a copy of current and stamps the next version.
// Identity fields cannot be changed by fn.
func applyMutation(current *entities.Encounter, fn MutateFunc, now time.Time) (*entities.Encounter, error) {
	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	next.ID = current.ID
	next.OwnerID = current.OwnerID
	next.CreatedAt = current.CreatedAt
	next.Version = current.Version + 1
	next.UpdatedAt = now

	if err := next.CheckInvariants(); err != nil {
		return nil, errors.Internalf("update would corrupt encounter %s: %v", current.ID, err)
	}

	return next, nil
}

// withRetry runs attempt until it succeeds, fails with something other than
// a conflict, or runs out of attempts. Conflicting writers back off with
// jitter so they stop colliding on the next read.
func withRetry(ctx context.Context, encounterID string, attempt func() (*entities.Encounter, error)) (*entities.Encounter, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialInterval
	policy.MaxInterval = retryMaxInterval

	tries := 0
	encounter, err := backoff.Retry(ctx, func() (*entities.Encounter, error) {
		tries++
		encounter, err := attempt()
		if err == nil {
			return encounter, nil
		}
		if err != errConflict {
			return nil, backoff.Permanent(err)
		}

		slog.DebugContext(ctx, "encounter write conflict",
			"encounter_id", encounterID,
			"attempt", tries)
		return nil, err
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(MaxMutateAttempts),
		backoff.WithMaxElapsedTime(retryMaxElapsed),
	)
	if err == nil {
		return encounter, nil
	}

	var permanent *backoff.PermanentError
	if stderrors.As(err, &permanent) {
		err = permanent.Unwrap()
	}

	switch {
	case err == errConflict:
		slog.WarnContext(ctx, "giving up on contended encounter",
			"encounter_id", encounterID,
			"attempts", tries)
		return nil, errors.Abortedf("encounter %s was modified concurrently, try again", encounterID)
	case ctx.Err() != nil && stderrors.Is(err, ctx.Err()):
		return nil, errors.Wrap(err, "encounter update interrupted")
	default:
		return nil, err
	}
}

// sortByRecent orders most recently updated first. ID breaks ties so the
// listing is deterministic.
func sortByRecent(list []*entities.Encounter) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ID > list[j].ID
	})
}
