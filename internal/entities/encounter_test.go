package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
)

func newEncounter() *entities.Encounter {
	desc := "cave mouth"
	roll := 12
	notes := "hiding"
	return &entities.Encounter{
		ID:          "enc-1",
		OwnerID:     "user-1",
		Name:        "Goblin Ambush",
		Description: &desc,
		Status:      entities.EncounterStatusPlanning,
		Round:       1,
		Participants: []*entities.Participant{
			{
				ID:             "p-1",
				EncounterID:    "enc-1",
				Type:           entities.ParticipantTypeCreature,
				Name:           "Goblin",
				Initiative:     14,
				InitiativeRoll: &roll,
				CurrentHP:      7,
				MaxHP:          7,
				Conditions:     []string{"prone"},
				IsActive:       true,
				Notes:          &notes,
			},
		},
		LairActions: []*entities.LairAction{{ID: "la-1", EncounterID: "enc-1", Name: "Falling rocks"}},
	}
}

func TestSetStatusMirrorsIsActive(t *testing.T) {
	enc := newEncounter()

	enc.SetStatus(entities.EncounterStatusActive)
	assert.True(t, enc.IsActive)

	enc.SetStatus(entities.EncounterStatusCompleted)
	assert.False(t, enc.IsActive)
	assert.NoError(t, enc.CheckInvariants())
}

func TestCheckInvariants(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*entities.Encounter)
	}{
		{"status mirror broken", func(e *entities.Encounter) { e.IsActive = true }},
		{"round below one", func(e *entities.Encounter) { e.Round = 0 }},
		{"negative turn", func(e *entities.Encounter) { e.Turn = -1 }},
		{"hp above max", func(e *entities.Encounter) { e.Participants[0].CurrentHP = 8 }},
		{"negative hp", func(e *entities.Encounter) { e.Participants[0].CurrentHP = -1 }},
		{"negative temp hp", func(e *entities.Encounter) { e.Participants[0].TempHP = -2 }},
		{"unknown status", func(e *entities.Encounter) { e.Status = "PAUSED" }},
	}

	require.NoError(t, newEncounter().CheckInvariants())

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			enc := newEncounter()
			tc.mutate(enc)
			assert.Error(t, enc.CheckInvariants())
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	enc := newEncounter()
	clone := enc.Clone()

	*clone.Description = "changed"
	clone.Participants[0].Conditions[0] = "stunned"
	*clone.Participants[0].InitiativeRoll = 1
	clone.LairActions[0].Name = "Flood"

	assert.Equal(t, "cave mouth", *enc.Description)
	assert.Equal(t, "prone", enc.Participants[0].Conditions[0])
	assert.Equal(t, 12, *enc.Participants[0].InitiativeRoll)
	assert.Equal(t, "Falling rocks", enc.LairActions[0].Name)
}

func TestFindParticipant(t *testing.T) {
	enc := newEncounter()

	p, idx := enc.FindParticipant("p-1")
	require.NotNil(t, p)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "p-1", p.GetID())
	assert.Equal(t, "CREATURE", p.GetType())

	p, idx = enc.FindParticipant("missing")
	assert.Nil(t, p)
	assert.Equal(t, -1, idx)
}
