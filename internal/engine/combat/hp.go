package combat

import "github.com/KirkDiggler/rpg-tracker/internal/entities"

// HPChange is a partial hit point update. Nil fields are left alone.
type HPChange struct {
	CurrentHP *int
	TempHP    *int
	Damage    *int
	Healing   *int
}

// ApplyHPChange updates the participant's hit points.
//
// Everything is computed from the stored values, in this order:
//  1. damage:  current = max(0, current - damage)
//  2. healing: current = min(max, current + healing)
//  3. an absolute current value replaces the result of 1 and 2
//  4. temp hp is floored at 0
//
// The result is always clamped to [0, max] so the invariant holds even for
// inputs the transport failed to reject.
func ApplyHPChange(p *entities.Participant, change HPChange) {
	current := p.CurrentHP

	if change.Damage != nil {
		current = max(0, current-*change.Damage)
	}
	if change.Healing != nil {
		current = min(p.MaxHP, current+*change.Healing)
	}
	if change.CurrentHP != nil {
		current = *change.CurrentHP
	}

	p.CurrentHP = ClampHP(current, p.MaxHP)

	if change.TempHP != nil {
		p.TempHP = max(0, *change.TempHP)
	}
}

// ClampHP bounds hp to [0, maxHP]
func ClampHP(hp, maxHP int) int {
	return max(0, min(hp, maxHP))
}
