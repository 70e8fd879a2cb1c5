package encounter_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
	"github.com/KirkDiggler/rpg-tracker/internal/orchestrators/encounter"
	"github.com/KirkDiggler/rpg-tracker/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-tracker/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-tracker/internal/repositories/encounters"
	"github.com/KirkDiggler/rpg-tracker/internal/testutils"
)

const (
	owner    = testutils.TestOwnerID
	intruder = testutils.TestOtherUserID
)

// stubRoller always rolls the same number
type stubRoller struct{ value int }

func (r *stubRoller) Roll(_ int) (int, error) { return r.value, nil }

func (r *stubRoller) RollN(count, _ int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i] = r.value
	}
	return out, nil
}

type OrchestratorTestSuite struct {
	suite.Suite

	ctx          context.Context
	clock        *clock.Fixed
	repo         encounters.Repository
	roller       *stubRoller
	orchestrator encounter.Service
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFixed(testutils.TestTime)
	s.repo = encounters.NewMemory(&encounters.MemoryConfig{Clock: s.clock})
	s.roller = &stubRoller{value: 11}

	var err error
	s.orchestrator, err = encounter.NewOrchestrator(&encounter.Config{
		Repository:             s.repo,
		IDGenerator:            idgen.NewSequential("enc"),
		ParticipantIDGenerator: idgen.NewSequential("p"),
		Clock:                  s.clock,
		DiceRoller:             s.roller,
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) createEncounter(name string) *entities.Encounter {
	out, err := s.orchestrator.CreateEncounter(s.ctx, &encounter.CreateEncounterInput{
		OwnerID: owner,
		Name:    name,
	})
	s.Require().NoError(err)
	return out.Encounter
}

func (s *OrchestratorTestSuite) addCreature(encounterID string, initiative int) string {
	out, err := s.orchestrator.AddParticipant(s.ctx, &encounter.AddParticipantInput{
		EncounterID: encounterID,
		UserID:      owner,
		Participant: encounter.ParticipantData{
			Type:       entities.ParticipantTypeCreature,
			Name:       "Goblin",
			Initiative: testutils.IntPtr(initiative),
			MaxHP:      7,
			AC:         15,
		},
	})
	s.Require().NoError(err)
	return out.ParticipantID
}

func (s *OrchestratorTestSuite) stored(id string) *entities.Encounter {
	out, err := s.repo.Get(s.ctx, encounters.GetInput{EncounterID: id})
	s.Require().NoError(err)
	return out.Encounter
}

func (s *OrchestratorTestSuite) TestNewOrchestratorValidatesConfig() {
	_, err := encounter.NewOrchestrator(&encounter.Config{})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	_, err = encounter.NewOrchestrator(&encounter.Config{
		Repository:       s.repo,
		IDGenerator:      idgen.NewSequential(""),
		StatusUpdateMode: "sometimes",
	})
	s.Error(err)
}

func (s *OrchestratorTestSuite) TestCreateEncounterDefaults() {
	out, err := s.orchestrator.CreateEncounter(s.ctx, &encounter.CreateEncounterInput{
		OwnerID:     owner,
		Name:        "  Goblin Ambush  ",
		Description: testutils.StringPtr("   "),
	})
	s.Require().NoError(err)

	e := out.Encounter
	s.Equal("enc_1", e.ID)
	s.Equal(owner, e.OwnerID)
	s.Equal("Goblin Ambush", e.Name)
	s.Nil(e.Description)
	s.Equal(entities.EncounterStatusPlanning, e.Status)
	s.False(e.IsActive)
	s.Equal(1, e.Round)
	s.Equal(0, e.Turn)
	s.Empty(e.Participants)
	s.Equal(testutils.TestTime, e.CreatedAt)
	s.NoError(e.CheckInvariants())
}

func (s *OrchestratorTestSuite) TestCreateEncounterNameBoundary() {
	testCases := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty", input: "", wantErr: "Encounter name is required"},
		{name: "blank", input: " ", wantErr: "Encounter name is required"},
		{name: "exactly 100", input: strings.Repeat("a", 100)},
		{name: "101", input: strings.Repeat("a", 101), wantErr: "Encounter name must be 100 characters or less"},
		{name: "100 runes", input: strings.Repeat("é", 100)},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.orchestrator.CreateEncounter(s.ctx, &encounter.CreateEncounterInput{
				OwnerID: owner,
				Name:    tc.input,
			})
			if tc.wantErr == "" {
				s.NoError(err)
				return
			}
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
			s.Equal(tc.wantErr, errors.GetMessage(err))
		})
	}
}

func (s *OrchestratorTestSuite) TestCreateEncounterRequiresOwner() {
	_, err := s.orchestrator.CreateEncounter(s.ctx, &encounter.CreateEncounterInput{Name: "x"})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.orchestrator.CreateEncounter(s.ctx, nil)
	s.True(errors.IsInvalidArgument(err))
}

// Round trip: create, three participants, start, end.
func (s *OrchestratorTestSuite) TestCombatRoundTrip() {
	e := s.createEncounter("Goblin Ambush")
	s.addCreature(e.ID, 12)
	s.addCreature(e.ID, 18)
	s.addCreature(e.ID, 5)

	started, err := s.orchestrator.StartCombat(s.ctx, &encounter.StartCombatInput{EncounterID: e.ID, UserID: owner})
	s.Require().NoError(err)
	s.Equal(entities.EncounterStatusActive, started.Encounter.Status)
	s.Equal(1, started.Encounter.Round)
	s.Equal(0, started.Encounter.Turn)
	s.True(started.Encounter.IsActive)
	s.Len(started.Encounter.Participants, 3)

	_, err = s.orchestrator.NextTurn(s.ctx, &encounter.NextTurnInput{EncounterID: e.ID, UserID: owner})
	s.Require().NoError(err)

	ended, err := s.orchestrator.EndCombat(s.ctx, &encounter.EndCombatInput{EncounterID: e.ID, UserID: owner})
	s.Require().NoError(err)
	s.Equal(entities.EncounterStatusCompleted, ended.Encounter.Status)
	s.False(ended.Encounter.IsActive)
	s.Equal(1, ended.Encounter.Round)
	s.Equal(1, ended.Encounter.Turn)
}

func (s *OrchestratorTestSuite) TestStartCombatWithoutParticipants() {
	e := s.createEncounter("Empty Room")

	_, err := s.orchestrator.StartCombat(s.ctx, &encounter.StartCombatInput{EncounterID: e.ID, UserID: owner})
	s.Require().Error(err)
	s.True(errors.IsInvalidState(err))
	s.Equal("Cannot start combat with no participants", errors.GetMessage(err))

	got := s.stored(e.ID)
	s.Equal(entities.EncounterStatusPlanning, got.Status)
	s.Equal(int64(1), got.Version)
}

func (s *OrchestratorTestSuite) TestEndCombatFromPlanning() {
	e := s.createEncounter("Never Started")

	out, err := s.orchestrator.EndCombat(s.ctx, &encounter.EndCombatInput{EncounterID: e.ID, UserID: owner})
	s.Require().NoError(err)
	s.Equal(entities.EncounterStatusCompleted, out.Encounter.Status)
}

func (s *OrchestratorTestSuite) TestSequencedHPMath() {
	e := s.createEncounter("HP")
	out, err := s.orchestrator.AddParticipant(s.ctx, &encounter.AddParticipantInput{
		EncounterID: e.ID,
		UserID:      owner,
		Participant: encounter.ParticipantData{
			Type:        entities.ParticipantTypeCharacter,
			CharacterID: testutils.StringPtr("char-1"),
			Name:        "Fighter",
			Initiative:  testutils.IntPtr(10),
			CurrentHP:   testutils.IntPtr(20),
			MaxHP:       30,
			AC:          18,
		},
	})
	s.Require().NoError(err)

	hp, err := s.orchestrator.UpdateParticipantHP(s.ctx, &encounter.UpdateParticipantHPInput{
		EncounterID:   e.ID,
		ParticipantID: out.ParticipantID,
		UserID:        owner,
		Damage:        testutils.IntPtr(10),
		Healing:       testutils.IntPtr(4),
	})
	s.Require().NoError(err)

	p, _ := hp.Encounter.FindParticipant(out.ParticipantID)
	s.Require().NotNil(p)
	s.Equal(14, p.CurrentHP)
}

func (s *OrchestratorTestSuite) TestHPClampForAnyMagnitude() {
	e := s.createEncounter("Clamp")
	pid := s.addCreature(e.ID, 10)

	for _, v := range []int{0, 1, 6, 7, 8, 1000} {
		out, err := s.orchestrator.UpdateParticipantHP(s.ctx, &encounter.UpdateParticipantHPInput{
			EncounterID:   e.ID,
			ParticipantID: pid,
			UserID:        owner,
			Damage:        testutils.IntPtr(v),
			Healing:       testutils.IntPtr(v / 2),
			TempHP:        testutils.IntPtr(-v),
		})
		s.Require().NoError(err)

		p, _ := out.Encounter.FindParticipant(pid)
		s.GreaterOrEqual(p.CurrentHP, 0)
		s.LessOrEqual(p.CurrentHP, p.MaxHP)
		s.GreaterOrEqual(p.TempHP, 0)
	}

	out, err := s.orchestrator.UpdateParticipantHP(s.ctx, &encounter.UpdateParticipantHPInput{
		EncounterID:   e.ID,
		ParticipantID: pid,
		UserID:        owner,
		CurrentHP:     testutils.IntPtr(500),
	})
	s.Require().NoError(err)
	p, _ := out.Encounter.FindParticipant(pid)
	s.Equal(7, p.CurrentHP)
}

func (s *OrchestratorTestSuite) TestHPRejectsNegativeDamage() {
	e := s.createEncounter("Negative")
	pid := s.addCreature(e.ID, 10)

	_, err := s.orchestrator.UpdateParticipantHP(s.ctx, &encounter.UpdateParticipantHPInput{
		EncounterID:   e.ID,
		ParticipantID: pid,
		UserID:        owner,
		Damage:        testutils.IntPtr(-5),
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestParticipantLookupErrors() {
	first := s.createEncounter("First")
	second := s.createEncounter("Second")
	foreign := s.addCreature(second.ID, 10)

	_, err := s.orchestrator.UpdateParticipantHP(s.ctx, &encounter.UpdateParticipantHPInput{
		EncounterID:   first.ID,
		ParticipantID: foreign,
		UserID:        owner,
		Damage:        testutils.IntPtr(1),
	})
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Equal("Participant does not belong to this encounter", errors.GetMessage(err))

	_, err = s.orchestrator.UpdateParticipantHP(s.ctx, &encounter.UpdateParticipantHPInput{
		EncounterID:   first.ID,
		ParticipantID: "p_404",
		UserID:        owner,
		Damage:        testutils.IntPtr(1),
	})
	s.True(errors.IsNotFound(err))
	s.Equal("Participant not found", errors.GetMessage(err))
}

// Every mutating operation by a non-owner fails with Unauthorized and
// leaves the encounter untouched.
func (s *OrchestratorTestSuite) TestOwnershipInvariant() {
	e := s.createEncounter("Mine")
	pid := s.addCreature(e.ID, 10)
	before := s.stored(e.ID)

	operations := map[string]func() error{
		"update": func() error {
			_, err := s.orchestrator.UpdateEncounter(s.ctx, &encounter.UpdateEncounterInput{
				EncounterID: e.ID, UserID: intruder, Name: testutils.StringPtr("Theirs"),
			})
			return err
		},
		"delete": func() error {
			_, err := s.orchestrator.DeleteEncounter(s.ctx, &encounter.DeleteEncounterInput{EncounterID: e.ID, UserID: intruder})
			return err
		},
		"add participant": func() error {
			_, err := s.orchestrator.AddParticipant(s.ctx, &encounter.AddParticipantInput{
				EncounterID: e.ID, UserID: intruder,
				Participant: encounter.ParticipantData{Type: entities.ParticipantTypeCreature, Name: "Spy", MaxHP: 1},
			})
			return err
		},
		"update participant": func() error {
			_, err := s.orchestrator.UpdateParticipant(s.ctx, &encounter.UpdateParticipantInput{
				EncounterID: e.ID, ParticipantID: pid, UserID: intruder,
				Patch: encounter.ParticipantPatch{Name: testutils.StringPtr("Renamed")},
			})
			return err
		},
		"remove participant": func() error {
			_, err := s.orchestrator.RemoveParticipant(s.ctx, &encounter.RemoveParticipantInput{
				EncounterID: e.ID, ParticipantID: pid, UserID: intruder,
			})
			return err
		},
		"update hp": func() error {
			_, err := s.orchestrator.UpdateParticipantHP(s.ctx, &encounter.UpdateParticipantHPInput{
				EncounterID: e.ID, ParticipantID: pid, UserID: intruder, Damage: testutils.IntPtr(3),
			})
			return err
		},
		"add lair action": func() error {
			_, err := s.orchestrator.AddLairAction(s.ctx, &encounter.AddLairActionInput{
				EncounterID: e.ID, UserID: intruder, Name: "Collapse",
			})
			return err
		},
		"start combat": func() error {
			_, err := s.orchestrator.StartCombat(s.ctx, &encounter.StartCombatInput{EncounterID: e.ID, UserID: intruder})
			return err
		},
		"end combat": func() error {
			_, err := s.orchestrator.EndCombat(s.ctx, &encounter.EndCombatInput{EncounterID: e.ID, UserID: intruder})
			return err
		},
		"next turn": func() error {
			_, err := s.orchestrator.NextTurn(s.ctx, &encounter.NextTurnInput{EncounterID: e.ID, UserID: intruder})
			return err
		},
	}

	for name, op := range operations {
		s.Run(name, func() {
			err := op()
			s.Require().Error(err)
			s.True(errors.IsUnauthorized(err), "got %v", err)
			s.Equal(before, s.stored(e.ID))
		})
	}
}

func (s *OrchestratorTestSuite) TestMissingEncounterIsNotFound() {
	_, err := s.orchestrator.StartCombat(s.ctx, &encounter.StartCombatInput{EncounterID: "enc_404", UserID: owner})
	s.True(errors.IsNotFound(err))

	_, err = s.orchestrator.DeleteEncounter(s.ctx, &encounter.DeleteEncounterInput{EncounterID: "enc_404", UserID: owner})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestGetEncounter() {
	e := s.createEncounter("Readable")

	out, err := s.orchestrator.GetEncounter(s.ctx, &encounter.GetEncounterInput{EncounterID: e.ID, UserID: owner})
	s.Require().NoError(err)
	s.Equal(e.ID, out.Encounter.ID)

	_, err = s.orchestrator.GetEncounter(s.ctx, &encounter.GetEncounterInput{EncounterID: e.ID, UserID: intruder})
	s.True(errors.IsUnauthorized(err))

	// no caller means no ownership check
	out, err = s.orchestrator.GetEncounter(s.ctx, &encounter.GetEncounterInput{EncounterID: e.ID})
	s.Require().NoError(err)
	s.Equal(e.ID, out.Encounter.ID)

	out, err = s.orchestrator.GetEncounter(s.ctx, &encounter.GetEncounterInput{EncounterID: "enc_404"})
	s.Require().NoError(err)
	s.Nil(out.Encounter)

	_, err = s.orchestrator.GetEncounter(s.ctx, &encounter.GetEncounterInput{EncounterID: "enc_404", UserID: owner})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestListUserEncountersMostRecentFirst() {
	first := s.createEncounter("First")
	s.clock.Advance(time.Minute)
	second := s.createEncounter("Second")
	s.clock.Advance(time.Minute)
	_, err := s.orchestrator.CreateEncounter(s.ctx, &encounter.CreateEncounterInput{OwnerID: intruder, Name: "Not mine"})
	s.Require().NoError(err)

	out, err := s.orchestrator.ListUserEncounters(s.ctx, &encounter.ListUserEncountersInput{OwnerID: owner})
	s.Require().NoError(err)
	s.Require().Len(out.Encounters, 2)
	s.Equal(second.ID, out.Encounters[0].ID)
	s.Equal(first.ID, out.Encounters[1].ID)

	// touching the older one moves it up
	s.clock.Advance(time.Minute)
	_, err = s.orchestrator.UpdateEncounter(s.ctx, &encounter.UpdateEncounterInput{
		EncounterID: first.ID, UserID: owner, Description: testutils.StringPtr("Now with notes"),
	})
	s.Require().NoError(err)

	out, err = s.orchestrator.ListUserEncounters(s.ctx, &encounter.ListUserEncountersInput{OwnerID: owner})
	s.Require().NoError(err)
	s.Equal(first.ID, out.Encounters[0].ID)
}

func (s *OrchestratorTestSuite) TestUpdateEncounter() {
	e := s.createEncounter("Old Name")

	out, err := s.orchestrator.UpdateEncounter(s.ctx, &encounter.UpdateEncounterInput{
		EncounterID: e.ID,
		UserID:      owner,
		Name:        testutils.StringPtr(" New Name "),
		Description: testutils.StringPtr(" Bridge fight "),
	})
	s.Require().NoError(err)
	s.Equal("New Name", out.Encounter.Name)
	s.Require().NotNil(out.Encounter.Description)
	s.Equal("Bridge fight", *out.Encounter.Description)

	out, err = s.orchestrator.UpdateEncounter(s.ctx, &encounter.UpdateEncounterInput{
		EncounterID: e.ID,
		UserID:      owner,
		Description: testutils.StringPtr(""),
	})
	s.Require().NoError(err)
	s.Nil(out.Encounter.Description)
	s.Equal("New Name", out.Encounter.Name)

	_, err = s.orchestrator.UpdateEncounter(s.ctx, &encounter.UpdateEncounterInput{
		EncounterID: e.ID,
		UserID:      owner,
		Name:        testutils.StringPtr(strings.Repeat("x", 101)),
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestUpdateStatusGuarded() {
	e := s.createEncounter("Guarded")
	active := entities.EncounterStatusActive

	_, err := s.orchestrator.UpdateEncounter(s.ctx, &encounter.UpdateEncounterInput{
		EncounterID: e.ID, UserID: owner, Status: &active,
	})
	s.True(errors.IsInvalidState(err), "no participants means no combat")

	s.addCreature(e.ID, 10)
	out, err := s.orchestrator.UpdateEncounter(s.ctx, &encounter.UpdateEncounterInput{
		EncounterID: e.ID, UserID: owner, Status: &active,
	})
	s.Require().NoError(err)
	s.Equal(entities.EncounterStatusActive, out.Encounter.Status)
	s.True(out.Encounter.IsActive)

	planning := entities.EncounterStatusPlanning
	_, err = s.orchestrator.UpdateEncounter(s.ctx, &encounter.UpdateEncounterInput{
		EncounterID: e.ID, UserID: owner, Status: &planning,
	})
	s.True(errors.IsInvalidState(err))
}

func (s *OrchestratorTestSuite) TestUpdateStatusDirect() {
	direct, err := encounter.NewOrchestrator(&encounter.Config{
		Repository:       s.repo,
		IDGenerator:      idgen.NewSequential("direct"),
		Clock:            s.clock,
		StatusUpdateMode: encounter.StatusUpdateDirect,
	})
	s.Require().NoError(err)

	created, err := direct.CreateEncounter(s.ctx, &encounter.CreateEncounterInput{OwnerID: owner, Name: "Direct"})
	s.Require().NoError(err)

	active := entities.EncounterStatusActive
	out, err := direct.UpdateEncounter(s.ctx, &encounter.UpdateEncounterInput{
		EncounterID: created.Encounter.ID, UserID: owner, Status: &active,
	})
	s.Require().NoError(err, "direct mode skips the participant precondition")
	s.Equal(entities.EncounterStatusActive, out.Encounter.Status)
	s.True(out.Encounter.IsActive)

	planning := entities.EncounterStatusPlanning
	out, err = direct.UpdateEncounter(s.ctx, &encounter.UpdateEncounterInput{
		EncounterID: created.Encounter.ID, UserID: owner, Status: &planning,
	})
	s.Require().NoError(err)
	s.Equal(entities.EncounterStatusPlanning, out.Encounter.Status)
	s.False(out.Encounter.IsActive)

	bogus := entities.EncounterStatus("PAUSED")
	_, err = direct.UpdateEncounter(s.ctx, &encounter.UpdateEncounterInput{
		EncounterID: created.Encounter.ID, UserID: owner, Status: &bogus,
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestDeleteEncounter() {
	e := s.createEncounter("Doomed")
	s.addCreature(e.ID, 3)

	_, err := s.orchestrator.DeleteEncounter(s.ctx, &encounter.DeleteEncounterInput{EncounterID: e.ID, UserID: owner})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, encounters.GetInput{EncounterID: e.ID})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestAddParticipantDefaults() {
	e := s.createEncounter("Defaults")

	out, err := s.orchestrator.AddParticipant(s.ctx, &encounter.AddParticipantInput{
		EncounterID: e.ID,
		UserID:      owner,
		Participant: encounter.ParticipantData{
			Type:               entities.ParticipantTypeCreature,
			CharacterID:        testutils.StringPtr("ignored"),
			Name:               " Orc ",
			InitiativeModifier: 2,
			MaxHP:              15,
			TempHP:             -3,
			AC:                 13,
		},
	})
	s.Require().NoError(err)
	s.Equal("p_1", out.ParticipantID)

	p, _ := out.Encounter.FindParticipant(out.ParticipantID)
	s.Require().NotNil(p)
	s.Equal(e.ID, p.EncounterID)
	s.Equal("Orc", p.Name)
	s.Nil(p.CharacterID, "creatures never carry a character reference")
	s.Nil(p.CreatureID)
	s.Equal(13, p.Initiative, "rolled 11 plus modifier 2")
	s.Require().NotNil(p.InitiativeRoll)
	s.Equal(11, *p.InitiativeRoll)
	s.Equal(15, p.CurrentHP)
	s.Equal(0, p.TempHP)
	s.Empty(p.Conditions)
	s.NotNil(p.Conditions)
	s.True(p.IsActive)
	s.Nil(p.Notes)
}

func (s *OrchestratorTestSuite) TestAddParticipantValidation() {
	e := s.createEncounter("Validation")

	testCases := []struct {
		name string
		data encounter.ParticipantData
	}{
		{name: "blank name", data: encounter.ParticipantData{Type: entities.ParticipantTypeCreature, Name: " "}},
		{name: "unknown type", data: encounter.ParticipantData{Type: "TRAP", Name: "Pit"}},
		{name: "character without id", data: encounter.ParticipantData{Type: entities.ParticipantTypeCharacter, Name: "Hero"}},
		{name: "negative max hp", data: encounter.ParticipantData{Type: entities.ParticipantTypeCreature, Name: "Ghost", MaxHP: -1}},
		{name: "negative ac", data: encounter.ParticipantData{Type: entities.ParticipantTypeCreature, Name: "Ooze", AC: -2}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.orchestrator.AddParticipant(s.ctx, &encounter.AddParticipantInput{
				EncounterID: e.ID,
				UserID:      owner,
				Participant: tc.data,
			})
			s.True(errors.IsInvalidArgument(err), "got %v", err)
		})
	}

	s.Empty(s.stored(e.ID).Participants)
}

func (s *OrchestratorTestSuite) TestAddParticipantClampsCurrentHP() {
	e := s.createEncounter("Clamp on add")

	out, err := s.orchestrator.AddParticipant(s.ctx, &encounter.AddParticipantInput{
		EncounterID: e.ID,
		UserID:      owner,
		Participant: encounter.ParticipantData{
			Type:       entities.ParticipantTypeCreature,
			Name:       "Troll",
			Initiative: testutils.IntPtr(7),
			CurrentHP:  testutils.IntPtr(200),
			MaxHP:      84,
		},
	})
	s.Require().NoError(err)

	p, _ := out.Encounter.FindParticipant(out.ParticipantID)
	s.Equal(84, p.CurrentHP)
	s.Nil(p.InitiativeRoll, "explicit initiative is not rolled")
}

func (s *OrchestratorTestSuite) TestUpdateParticipant() {
	e := s.createEncounter("Patch")
	pid := s.addCreature(e.ID, 10)

	out, err := s.orchestrator.UpdateParticipant(s.ctx, &encounter.UpdateParticipantInput{
		EncounterID:   e.ID,
		ParticipantID: pid,
		UserID:        owner,
		Patch: encounter.ParticipantPatch{
			Name:       testutils.StringPtr("Goblin Boss"),
			MaxHP:      testutils.IntPtr(4),
			Conditions: []string{"frightened"},
			Notes:      testutils.StringPtr("flees at half hp"),
			IsActive:   testutils.BoolPtr(false),
		},
	})
	s.Require().NoError(err)

	p, _ := out.Encounter.FindParticipant(pid)
	s.Equal("Goblin Boss", p.Name)
	s.Equal(4, p.MaxHP)
	s.Equal(4, p.CurrentHP, "lowering max hp re-clamps current hp")
	s.Equal([]string{"frightened"}, p.Conditions)
	s.Require().NotNil(p.Notes)
	s.False(p.IsActive)
	s.Equal(15, p.AC, "untouched fields stay")

	_, err = s.orchestrator.UpdateParticipant(s.ctx, &encounter.UpdateParticipantInput{
		EncounterID:   e.ID,
		ParticipantID: pid,
		UserID:        owner,
		Patch:         encounter.ParticipantPatch{AC: testutils.IntPtr(-1)},
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestRemoveParticipant() {
	e := s.createEncounter("Remove")
	keep := s.addCreature(e.ID, 10)
	drop := s.addCreature(e.ID, 12)

	out, err := s.orchestrator.RemoveParticipant(s.ctx, &encounter.RemoveParticipantInput{
		EncounterID: e.ID, ParticipantID: drop, UserID: owner,
	})
	s.Require().NoError(err)
	s.Require().Len(out.Encounter.Participants, 1)
	s.Equal(keep, out.Encounter.Participants[0].ID)

	_, err = s.orchestrator.RemoveParticipant(s.ctx, &encounter.RemoveParticipantInput{
		EncounterID: e.ID, ParticipantID: drop, UserID: owner,
	})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestRemovingLastInOrderResetsTurn() {
	e := s.createEncounter("Shrinking")
	s.addCreature(e.ID, 15)
	last := s.addCreature(e.ID, 5)

	_, err := s.orchestrator.StartCombat(s.ctx, &encounter.StartCombatInput{EncounterID: e.ID, UserID: owner})
	s.Require().NoError(err)
	next, err := s.orchestrator.NextTurn(s.ctx, &encounter.NextTurnInput{EncounterID: e.ID, UserID: owner})
	s.Require().NoError(err)
	s.Equal(last, next.CurrentParticipantID)

	out, err := s.orchestrator.RemoveParticipant(s.ctx, &encounter.RemoveParticipantInput{
		EncounterID: e.ID, ParticipantID: last, UserID: owner,
	})
	s.Require().NoError(err)
	s.Equal(0, out.Encounter.Turn)
	s.Equal(1, out.Encounter.Round)
}

func (s *OrchestratorTestSuite) TestAddLairAction() {
	e := s.createEncounter("Lair")

	out, err := s.orchestrator.AddLairAction(s.ctx, &encounter.AddLairActionInput{
		EncounterID: e.ID,
		UserID:      owner,
		Name:        "Tremor",
		Description: testutils.StringPtr("DC 15 Dex save or prone"),
	})
	s.Require().NoError(err)
	s.Require().Len(out.Encounter.LairActions, 1)
	s.Equal(out.LairActionID, out.Encounter.LairActions[0].ID)
	s.Equal("Tremor", out.Encounter.LairActions[0].Name)

	_, err = s.orchestrator.AddLairAction(s.ctx, &encounter.AddLairActionInput{EncounterID: e.ID, UserID: owner})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestInitiativeOrderAndTurns() {
	e := s.createEncounter("Order")
	slow := s.addCreature(e.ID, 5)
	fast := s.addCreature(e.ID, 20)
	mid := s.addCreature(e.ID, 12)

	order, err := s.orchestrator.GetInitiativeOrder(s.ctx, &encounter.GetInitiativeOrderInput{EncounterID: e.ID, UserID: owner})
	s.Require().NoError(err)
	s.Equal([]string{fast, mid, slow}, participantIDs(order.Order))
	s.Empty(order.CurrentParticipantID, "nobody acts before combat starts")

	_, err = s.orchestrator.NextTurn(s.ctx, &encounter.NextTurnInput{EncounterID: e.ID, UserID: owner})
	s.True(errors.IsInvalidState(err))

	_, err = s.orchestrator.StartCombat(s.ctx, &encounter.StartCombatInput{EncounterID: e.ID, UserID: owner})
	s.Require().NoError(err)

	order, err = s.orchestrator.GetInitiativeOrder(s.ctx, &encounter.GetInitiativeOrderInput{EncounterID: e.ID, UserID: owner})
	s.Require().NoError(err)
	s.Equal(fast, order.CurrentParticipantID)

	expected := []struct {
		round   int
		current string
	}{
		{1, mid},
		{1, slow},
		{2, fast},
	}
	for _, want := range expected {
		out, err := s.orchestrator.NextTurn(s.ctx, &encounter.NextTurnInput{EncounterID: e.ID, UserID: owner})
		s.Require().NoError(err)
		s.Equal(want.round, out.Encounter.Round)
		s.Equal(want.current, out.CurrentParticipantID)
	}

	_, err = s.orchestrator.GetInitiativeOrder(s.ctx, &encounter.GetInitiativeOrderInput{EncounterID: e.ID, UserID: intruder})
	s.True(errors.IsUnauthorized(err))
}

func participantIDs(ps []*entities.Participant) []string {
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	return ids
}
