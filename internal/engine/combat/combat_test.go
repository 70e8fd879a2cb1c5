package combat_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-tracker/internal/engine/combat"
	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
)

func intPtr(v int) *int { return &v }

func participant(id string, initiative int, roll *int) *entities.Participant {
	return &entities.Participant{
		ID:             id,
		Type:           entities.ParticipantTypeCreature,
		Name:           id,
		Initiative:     initiative,
		InitiativeRoll: roll,
		CurrentHP:      10,
		MaxHP:          10,
		IsActive:       true,
	}
}

func ids(ps []*entities.Participant) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

type InitiativeTestSuite struct {
	suite.Suite
}

func TestInitiativeTestSuite(t *testing.T) {
	suite.Run(t, new(InitiativeTestSuite))
}

func (s *InitiativeTestSuite) TestOrdersByInitiativeDescending() {
	order := combat.InitiativeOrder([]*entities.Participant{
		participant("goblin", 8, nil),
		participant("fighter", 17, nil),
		participant("wizard", 12, nil),
	})
	s.Equal([]string{"fighter", "wizard", "goblin"}, ids(order))
}

func (s *InitiativeTestSuite) TestTieBrokenByRoll() {
	order := combat.InitiativeOrder([]*entities.Participant{
		participant("A", 20, intPtr(10)),
		participant("C", 15, intPtr(12)),
		participant("B", 15, intPtr(18)),
	})
	s.Equal([]string{"A", "B", "C"}, ids(order))
}

func (s *InitiativeTestSuite) TestTieWithoutUsableRollsKeepsInsertionOrder() {
	testCases := []struct {
		name  string
		first *int
		other *int
	}{
		{name: "both missing", first: nil, other: nil},
		{name: "one missing", first: nil, other: intPtr(19)},
		{name: "zero roll", first: intPtr(0), other: intPtr(19)},
		{name: "equal rolls", first: intPtr(11), other: intPtr(11)},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			order := combat.InitiativeOrder([]*entities.Participant{
				participant("first", 14, tc.first),
				participant("second", 14, tc.other),
			})
			s.Equal([]string{"first", "second"}, ids(order))
		})
	}
}

func (s *InitiativeTestSuite) TestInactiveParticipantsExcluded() {
	down := participant("down", 25, nil)
	down.IsActive = false

	order := combat.InitiativeOrder([]*entities.Participant{
		participant("up", 5, nil),
		down,
	})
	s.Equal([]string{"up"}, ids(order))
}

func (s *InitiativeTestSuite) TestDoesNotReorderInput() {
	input := []*entities.Participant{
		participant("slow", 1, nil),
		participant("fast", 20, nil),
	}
	_ = combat.InitiativeOrder(input)
	s.Equal([]string{"slow", "fast"}, ids(input))
}

func (s *InitiativeTestSuite) TestLargeRosterIsStable() {
	var input []*entities.Participant
	for i := 0; i < 40; i++ {
		input = append(input, participant(fmt.Sprintf("p%02d", i), i%3, nil))
	}

	order := combat.InitiativeOrder(input)
	s.Require().Len(order, 40)

	for i := 1; i < len(order); i++ {
		prev, cur := order[i-1], order[i]
		s.GreaterOrEqual(prev.Initiative, cur.Initiative)
		if prev.Initiative == cur.Initiative {
			s.Less(prev.ID, cur.ID, "ties must keep insertion order")
		}
	}
}

func (s *InitiativeTestSuite) TestCurrentActor() {
	enc := &entities.Encounter{
		Participants: []*entities.Participant{
			participant("slow", 3, nil),
			participant("fast", 18, nil),
		},
		Turn: 1,
	}
	actor := combat.CurrentActor(enc)
	s.Require().NotNil(actor)
	s.Equal("slow", actor.GetID())
	s.Equal(string(entities.ParticipantTypeCreature), actor.GetType())

	enc.Turn = 5
	s.Nil(combat.CurrentActor(enc), "out of range must be a nil interface, not a typed nil")
}

type fixedRoller struct {
	value int
	err   error
	sizes []int
}

func (r *fixedRoller) Roll(size int) (int, error) {
	r.sizes = append(r.sizes, size)
	return r.value, r.err
}

func (r *fixedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		v, err := r.Roll(size)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *InitiativeTestSuite) TestRollInitiative() {
	roller := &fixedRoller{value: 14}

	total, roll, err := combat.RollInitiative(roller, 3)
	s.Require().NoError(err)
	s.Equal(17, total)
	s.Equal(14, roll)
	s.Equal([]int{combat.InitiativeDie}, roller.sizes)
}

func (s *InitiativeTestSuite) TestRollInitiativeFailure() {
	_, _, err := combat.RollInitiative(&fixedRoller{err: fmt.Errorf("no entropy")}, 0)
	s.Error(err)

	_, _, err = combat.RollInitiative(nil, 0)
	s.True(errors.IsInternal(err))
}

func newEncounter(participants ...*entities.Participant) *entities.Encounter {
	return &entities.Encounter{
		ID:           "enc_1",
		OwnerID:      "u1",
		Name:         "Goblin Ambush",
		Status:       entities.EncounterStatusPlanning,
		Round:        1,
		Participants: participants,
	}
}

func TestStartCombat(t *testing.T) {
	enc := newEncounter(participant("a", 10, nil))
	enc.Round = 4
	enc.Turn = 2

	require.NoError(t, combat.StartCombat(enc))
	assert.Equal(t, entities.EncounterStatusActive, enc.Status)
	assert.True(t, enc.IsActive)
	assert.Equal(t, 1, enc.Round)
	assert.Equal(t, 0, enc.Turn)
	assert.NoError(t, enc.CheckInvariants())
}

func TestStartCombatWithoutParticipants(t *testing.T) {
	enc := newEncounter()

	err := combat.StartCombat(enc)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidState(err))
	assert.Equal(t, "Cannot start combat with no participants", errors.GetMessage(err))
	assert.Equal(t, entities.EncounterStatusPlanning, enc.Status)
	assert.False(t, enc.IsActive)
}

func TestStartCombatRestartsCompleted(t *testing.T) {
	enc := newEncounter(participant("a", 10, nil))
	enc.SetStatus(entities.EncounterStatusCompleted)
	enc.Round = 7

	require.NoError(t, combat.StartCombat(enc))
	assert.Equal(t, entities.EncounterStatusActive, enc.Status)
	assert.Equal(t, 1, enc.Round)
}

func TestEndCombatKeepsRoundAndTurn(t *testing.T) {
	for _, status := range entities.EncounterStatuses {
		t.Run(string(status), func(t *testing.T) {
			enc := newEncounter()
			enc.SetStatus(status)
			enc.Round = 3
			enc.Turn = 1

			combat.EndCombat(enc)
			assert.Equal(t, entities.EncounterStatusCompleted, enc.Status)
			assert.False(t, enc.IsActive)
			assert.Equal(t, 3, enc.Round)
			assert.Equal(t, 1, enc.Turn)
		})
	}
}

func TestNextTurnWrapsIntoNewRound(t *testing.T) {
	enc := newEncounter(
		participant("a", 15, nil),
		participant("b", 10, nil),
	)
	require.NoError(t, combat.StartCombat(enc))

	require.NoError(t, combat.NextTurn(enc))
	assert.Equal(t, 1, enc.Round)
	assert.Equal(t, 1, enc.Turn)

	require.NoError(t, combat.NextTurn(enc))
	assert.Equal(t, 2, enc.Round)
	assert.Equal(t, 0, enc.Turn)
}

func TestNextTurnSkipsInactive(t *testing.T) {
	down := participant("down", 12, nil)
	down.IsActive = false
	enc := newEncounter(participant("a", 15, nil), down)
	require.NoError(t, combat.StartCombat(enc))

	require.NoError(t, combat.NextTurn(enc))
	assert.Equal(t, 2, enc.Round)
	assert.Equal(t, 0, enc.Turn)
}

func TestNextTurnRequiresActiveCombat(t *testing.T) {
	enc := newEncounter(participant("a", 15, nil))

	err := combat.NextTurn(enc)
	assert.True(t, errors.IsInvalidState(err))
	assert.Equal(t, 0, enc.Turn)
}

func TestNextTurnWithNobodyStanding(t *testing.T) {
	down := participant("down", 12, nil)
	down.IsActive = false
	enc := newEncounter(down)
	require.NoError(t, combat.StartCombat(enc))

	err := combat.NextTurn(enc)
	assert.True(t, errors.IsInvalidState(err))
}

func TestClampTurn(t *testing.T) {
	a, b := participant("a", 15, nil), participant("b", 10, nil)
	enc := newEncounter(a, b)
	require.NoError(t, combat.StartCombat(enc))
	require.NoError(t, combat.NextTurn(enc))

	combat.ClampTurn(enc)
	assert.Equal(t, 1, enc.Turn, "turn still inside the order")

	b.IsActive = false
	combat.ClampTurn(enc)
	assert.Equal(t, 0, enc.Turn)
	assert.Equal(t, 1, enc.Round)
}

func TestTransitionTo(t *testing.T) {
	testCases := []struct {
		name         string
		from         entities.EncounterStatus
		participants int
		to           entities.EncounterStatus
		wantStatus   entities.EncounterStatus
		wantErr      func(error) bool
	}{
		{name: "planning to active", from: entities.EncounterStatusPlanning, participants: 1, to: entities.EncounterStatusActive, wantStatus: entities.EncounterStatusActive},
		{name: "planning to active without roster", from: entities.EncounterStatusPlanning, to: entities.EncounterStatusActive, wantStatus: entities.EncounterStatusPlanning, wantErr: errors.IsInvalidState},
		{name: "active to completed", from: entities.EncounterStatusActive, participants: 1, to: entities.EncounterStatusCompleted, wantStatus: entities.EncounterStatusCompleted},
		{name: "completed to planning", from: entities.EncounterStatusCompleted, to: entities.EncounterStatusPlanning, wantStatus: entities.EncounterStatusCompleted, wantErr: errors.IsInvalidState},
		{name: "same status is a no-op", from: entities.EncounterStatusPlanning, to: entities.EncounterStatusPlanning, wantStatus: entities.EncounterStatusPlanning},
		{name: "unknown status", from: entities.EncounterStatusPlanning, to: "PAUSED", wantStatus: entities.EncounterStatusPlanning, wantErr: errors.IsInvalidArgument},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			enc := newEncounter()
			for i := 0; i < tc.participants; i++ {
				enc.Participants = append(enc.Participants, participant(fmt.Sprintf("p%d", i), 10, nil))
			}
			enc.SetStatus(tc.from)

			err := combat.TransitionTo(enc, tc.to)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr(err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantStatus, enc.Status)
			assert.Equal(t, enc.Status == entities.EncounterStatusActive, enc.IsActive)
		})
	}
}

func TestForceStatus(t *testing.T) {
	enc := newEncounter()
	enc.SetStatus(entities.EncounterStatusCompleted)

	require.NoError(t, combat.ForceStatus(enc, entities.EncounterStatusActive))
	assert.Equal(t, entities.EncounterStatusActive, enc.Status)
	assert.True(t, enc.IsActive)

	err := combat.ForceStatus(enc, "PAUSED")
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestApplyHPChange(t *testing.T) {
	testCases := []struct {
		name        string
		current     int
		temp        int
		change      combat.HPChange
		wantCurrent int
		wantTemp    int
	}{
		{name: "damage", current: 20, change: combat.HPChange{Damage: intPtr(7)}, wantCurrent: 13},
		{name: "damage floors at zero", current: 20, change: combat.HPChange{Damage: intPtr(50)}, wantCurrent: 0},
		{name: "healing caps at max", current: 20, change: combat.HPChange{Healing: intPtr(30)}, wantCurrent: 30},
		{name: "damage then healing", current: 20, change: combat.HPChange{Damage: intPtr(15), Healing: intPtr(4)}, wantCurrent: 9},
		{name: "absolute wins", current: 20, change: combat.HPChange{Damage: intPtr(5), Healing: intPtr(5), CurrentHP: intPtr(25)}, wantCurrent: 25},
		{name: "absolute clamps high", current: 20, change: combat.HPChange{CurrentHP: intPtr(99)}, wantCurrent: 30},
		{name: "absolute clamps low", current: 20, change: combat.HPChange{CurrentHP: intPtr(-4)}, wantCurrent: 0},
		{name: "temp hp set", current: 20, change: combat.HPChange{TempHP: intPtr(8)}, wantCurrent: 20, wantTemp: 8},
		{name: "temp hp floors at zero", current: 20, temp: 5, change: combat.HPChange{TempHP: intPtr(-3)}, wantCurrent: 20, wantTemp: 0},
		{name: "empty change", current: 12, temp: 2, change: combat.HPChange{}, wantCurrent: 12, wantTemp: 2},
		{name: "negative damage cannot exceed max", current: 28, change: combat.HPChange{Damage: intPtr(-10)}, wantCurrent: 30},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := participant("p", 10, nil)
			p.MaxHP = 30
			p.CurrentHP = tc.current
			p.TempHP = tc.temp

			combat.ApplyHPChange(p, tc.change)
			assert.Equal(t, tc.wantCurrent, p.CurrentHP)
			assert.Equal(t, tc.wantTemp, p.TempHP)
		})
	}
}

func TestApplyHPChangeKeepsBoundsForAnyMagnitude(t *testing.T) {
	for _, v := range []int{-1000, -1, 0, 1, 29, 30, 31, 1000} {
		p := participant("p", 10, nil)
		p.MaxHP = 30
		p.CurrentHP = 15

		combat.ApplyHPChange(p, combat.HPChange{Damage: intPtr(v), Healing: intPtr(v), TempHP: intPtr(v)})
		assert.GreaterOrEqual(t, p.CurrentHP, 0)
		assert.LessOrEqual(t, p.CurrentHP, p.MaxHP)
		assert.GreaterOrEqual(t, p.TempHP, 0)
	}
}
