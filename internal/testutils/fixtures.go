package testutils

import (
	"fmt"
	"time"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
)

// Fixture defaults
const (
	TestOwnerID       = "user-owner"
	TestOtherUserID   = "user-intruder"
	TestEncounterName = "Goblin Ambush"
)

// TestTime is the instant fixtures are stamped with
var TestTime = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

// IntPtr returns a pointer to v
func IntPtr(v int) *int { return &v }

// StringPtr returns a pointer to v
func StringPtr(v string) *string { return &v }

// EncounterOption tweaks a fixture encounter
type EncounterOption func(*entities.Encounter)

// WithStatus sets the status and keeps IsActive in step
func WithStatus(status entities.EncounterStatus) EncounterOption {
	return func(e *entities.Encounter) { e.SetStatus(status) }
}

// WithParticipants appends participants and stamps their encounter ID
func WithParticipants(participants ...*entities.Participant) EncounterOption {
	return func(e *entities.Encounter) {
		for _, p := range participants {
			p.EncounterID = e.ID
			e.Participants = append(e.Participants, p)
		}
	}
}

// WithOwner overrides the owner
func WithOwner(ownerID string) EncounterOption {
	return func(e *entities.Encounter) { e.OwnerID = ownerID }
}

// WithUpdatedAt overrides the last update time
func WithUpdatedAt(t time.Time) EncounterOption {
	return func(e *entities.Encounter) { e.UpdatedAt = t }
}

// NewTestEncounter builds a PLANNING encounter owned by TestOwnerID
func NewTestEncounter(id string, opts ...EncounterOption) *entities.Encounter {
	e := &entities.Encounter{
		ID:           id,
		OwnerID:      TestOwnerID,
		Name:         TestEncounterName,
		Description:  StringPtr("Ambush on the Triboar Trail"),
		Status:       entities.EncounterStatusPlanning,
		Round:        1,
		Turn:         0,
		Participants: []*entities.Participant{},
		LairActions:  []*entities.LairAction{},
		CreatedAt:    TestTime,
		UpdatedAt:    TestTime,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewTestCreature builds an active creature at full health
func NewTestCreature(id string, initiative int, roll *int) *entities.Participant {
	return &entities.Participant{
		ID:             id,
		Type:           entities.ParticipantTypeCreature,
		CreatureID:     StringPtr("goblin"),
		Name:           fmt.Sprintf("Goblin %s", id),
		Initiative:     initiative,
		InitiativeRoll: roll,
		CurrentHP:      7,
		MaxHP:          7,
		AC:             15,
		Conditions:     []string{},
		IsActive:       true,
	}
}

// NewTestCharacter builds an active player character at full health
func NewTestCharacter(id string, initiative int, roll *int) *entities.Participant {
	return &entities.Participant{
		ID:             id,
		Type:           entities.ParticipantTypeCharacter,
		CharacterID:    StringPtr("char-" + id),
		Name:           fmt.Sprintf("Hero %s", id),
		Initiative:     initiative,
		InitiativeRoll: roll,
		CurrentHP:      30,
		MaxHP:          30,
		AC:             16,
		Conditions:     []string{},
		IsActive:       true,
	}
}

// BoolPtr returns a pointer to v
func BoolPtr(v bool) *bool { return &v }
