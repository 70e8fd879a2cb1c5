package combat

import (
	"github.com/KirkDiggler/rpg-toolkit/core"
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
)

// InitiativeDie is the die rolled for initiative
const InitiativeDie = 20

// InitiativeOrder returns the active participants in turn order.
//
// Higher initiative acts first. Equal initiatives fall back to the raw die
// roll, but only when both participants have a non-zero roll and the rolls
// differ. Anything still tied keeps its input order: first seen, first served.
// The result is a total preorder, so unresolved ties are expected and are not
// an error.
//
// The input slice is not modified.
func InitiativeOrder(participants []*entities.Participant) []*entities.Participant {
	order := make([]*entities.Participant, 0, len(participants))
	for _, p := range participants {
		if p != nil && p.IsActive {
			order = append(order, p)
		}
	}

	// Insertion sort: a participant only moves ahead of a neighbour it strictly
	// beats, which keeps mixed tie chains (rolled vs unrolled) deterministic.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && actsBefore(order[j], order[j-1]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	return order
}

// actsBefore reports whether a strictly precedes b
func actsBefore(a, b *entities.Participant) bool {
	if a.Initiative != b.Initiative {
		return a.Initiative > b.Initiative
	}
	if !usableRoll(a.InitiativeRoll) || !usableRoll(b.InitiativeRoll) {
		return false
	}
	return *a.InitiativeRoll > *b.InitiativeRoll
}

func usableRoll(roll *int) bool {
	return roll != nil && *roll != 0
}

// CurrentActor returns the participant whose turn it is, or nil when the
// turn index points past the active roster
func CurrentActor(encounter *entities.Encounter) core.Entity {
	order := InitiativeOrder(encounter.Participants)
	if encounter.Turn < 0 || encounter.Turn >= len(order) {
		return nil
	}
	return order[encounter.Turn]
}

// RollInitiative rolls a d20 and adds the modifier. It returns the total and
// the raw die so callers can keep the die as a tie-breaker.
func RollInitiative(roller dice.Roller, modifier int) (total int, roll int, err error) {
	if roller == nil {
		return 0, 0, errors.Internal("dice roller is not configured")
	}

	roll, err = roller.Roll(InitiativeDie)
	if err != nil {
		return 0, 0, errors.Wrap(err, "failed to roll initiative")
	}

	return roll + modifier, roll, nil
}
