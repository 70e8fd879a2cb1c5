package encounters

import (
	"context"
	"sync"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
	"github.com/KirkDiggler/rpg-tracker/internal/pkg/clock"
)

// MemoryConfig contains configuration for the in-memory repository
type MemoryConfig struct {
	Clock clock.Clock
}

type memoryRepository struct {
	mu         sync.RWMutex
	encounters map[string]*entities.Encounter
	clock      clock.Clock
}

// NewMemory creates an in-memory repository. Reads and writes copy the
// aggregate so callers never share memory with the store.
func NewMemory(cfg *MemoryConfig) Repository {
	c := clock.New()
	if cfg != nil && cfg.Clock != nil {
		c = cfg.Clock
	}

	return &memoryRepository{
		encounters: make(map[string]*entities.Encounter),
		clock:      c,
	}
}

func (r *memoryRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.encounters[input.Encounter.ID]; exists {
		return nil, errors.AlreadyExistsf("encounter with ID %s already exists", input.Encounter.ID)
	}

	stored := input.Encounter.Clone()
	stored.Version = 1
	r.encounters[stored.ID] = stored

	return &CreateOutput{Encounter: stored.Clone()}, nil
}

func (r *memoryRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	encounter, ok := r.encounters[input.EncounterID]
	if !ok {
		return nil, notFound(input.EncounterID)
	}

	return &GetOutput{Encounter: encounter.Clone()}, nil
}

func (r *memoryRepository) ListByOwner(ctx context.Context, input ListByOwnerInput) (*ListByOwnerOutput, error) {
	if input.OwnerID == "" {
		return nil, errors.InvalidArgument(errOwnerIDEmpty)
	}

	r.mu.RLock()
	list := make([]*entities.Encounter, 0)
	for _, encounter := range r.encounters {
		if encounter.OwnerID == input.OwnerID {
			list = append(list, encounter.Clone())
		}
	}
	r.mu.RUnlock()

	sortByRecent(list)
	return &ListByOwnerOutput{Encounters: list}, nil
}

func (r *memoryRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.encounters[input.EncounterID]; !ok {
		return nil, notFound(input.EncounterID)
	}
	delete(r.encounters, input.EncounterID)

	return &DeleteOutput{}, nil
}

func (r *memoryRepository) FindParticipant(ctx context.Context, input FindParticipantInput) (*FindParticipantOutput, error) {
	if input.ParticipantID == "" {
		return nil, errors.InvalidArgument(errParticipantEmpty)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, encounter := range r.encounters {
		if p, _ := encounter.FindParticipant(input.ParticipantID); p != nil {
			return &FindParticipantOutput{EncounterID: encounter.ID}, nil
		}
	}

	return nil, participantNotFound(input.ParticipantID)
}

// Mutate holds the write lock for the whole read-modify-write, so it never
// conflicts and never retries.
func (r *memoryRepository) Mutate(ctx context.Context, input MutateInput) (*MutateOutput, error) {
	if err := validateMutate(input); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.encounters[input.EncounterID]
	if !ok {
		return nil, notFound(input.EncounterID)
	}

	next, err := applyMutation(current, input.Fn, r.clock.Now())
	if err != nil {
		return nil, err
	}
	r.encounters[next.ID] = next

	return &MutateOutput{Encounter: next.Clone()}, nil
}
