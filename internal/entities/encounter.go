// Package entities provides the encounter aggregate shared by the engine,
// repositories and transports.
package entities

import (
	"fmt"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/core"
)

// EncounterStatus is the combat lifecycle state of an encounter
type EncounterStatus string

// Lifecycle states. COMPLETED is terminal for the guarded transitions.
const (
	EncounterStatusPlanning  EncounterStatus = "PLANNING"
	EncounterStatusActive    EncounterStatus = "ACTIVE"
	EncounterStatusCompleted EncounterStatus = "COMPLETED"
)

// EncounterStatuses lists every valid status in lifecycle order
var EncounterStatuses = []EncounterStatus{
	EncounterStatusPlanning,
	EncounterStatusActive,
	EncounterStatusCompleted,
}

// IsValid reports whether s is one of the known statuses
func (s EncounterStatus) IsValid() bool {
	for _, known := range EncounterStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParticipantType distinguishes player characters from creatures
type ParticipantType string

// Participant types
const (
	ParticipantTypeCharacter ParticipantType = "CHARACTER"
	ParticipantTypeCreature  ParticipantType = "CREATURE"
)

// IsValid reports whether t is a known participant type
func (t ParticipantType) IsValid() bool {
	return t == ParticipantTypeCharacter || t == ParticipantTypeCreature
}

// Encounter is one planned-or-run combat scenario owned by a single user.
// Participants are kept in insertion order; turn order is computed.
type Encounter struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Status       EncounterStatus `json:"status"`
	Round        int             `json:"round"`
	Turn         int             `json:"turn"`
	IsActive     bool            `json:"is_active"`
	Participants []*Participant  `json:"participants"`
	LairActions  []*LairAction   `json:"lair_actions"`
	Version      int64           `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Participant is one combatant placed into an encounter
type Participant struct {
	ID             string          `json:"id"`
	EncounterID    string          `json:"encounter_id"`
	Type           ParticipantType `json:"type"`
	CharacterID    *string         `json:"character_id"`
	CreatureID     *string         `json:"creature_id"`
	Name           string          `json:"name"`
	Initiative     int             `json:"initiative"`
	InitiativeRoll *int            `json:"initiative_roll"`
	CurrentHP      int             `json:"current_hp"`
	MaxHP          int             `json:"max_hp"`
	TempHP         int             `json:"temp_hp"`
	AC             int             `json:"ac"`
	Conditions     []string        `json:"conditions"`
	IsActive       bool            `json:"is_active"`
	Notes          *string         `json:"notes"`
}

// LairAction is an environment-triggered effect. The engine stores it and
// hands it back; it never interprets it.
type LairAction struct {
	ID          string  `json:"id"`
	EncounterID string  `json:"encounter_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

var _ core.Entity = (*Participant)(nil)

// GetID returns the participant ID
func (p *Participant) GetID() string {
	return p.ID
}

// GetType returns the participant type as a toolkit entity type
func (p *Participant) GetType() string {
	return string(p.Type)
}

// SetStatus changes the status and keeps IsActive mirrored to it
func (e *Encounter) SetStatus(status EncounterStatus) {
	e.Status = status
	e.IsActive = status == EncounterStatusActive
}

// FindParticipant returns the participant with the given ID and its index, or nil and -1
func (e *Encounter) FindParticipant(participantID string) (*Participant, int) {
	for i, p := range e.Participants {
		if p.ID == participantID {
			return p, i
		}
	}
	return nil, -1
}

// CheckInvariants verifies the aggregate-wide rules that every operation must preserve
func (e *Encounter) CheckInvariants() error {
	if !e.Status.IsValid() {
		return fmt.Errorf("unknown status %q", e.Status)
	}
	if e.IsActive != (e.Status == EncounterStatusActive) {
		return fmt.Errorf("is_active=%t disagrees with status %s", e.IsActive, e.Status)
	}
	if e.Round < 1 {
		return fmt.Errorf("round %d is below 1", e.Round)
	}
	if e.Turn < 0 {
		return fmt.Errorf("turn %d is negative", e.Turn)
	}
	for _, p := range e.Participants {
		if p.CurrentHP < 0 || p.CurrentHP > p.MaxHP {
			return fmt.Errorf("participant %s current_hp %d outside [0, %d]", p.ID, p.CurrentHP, p.MaxHP)
		}
		if p.TempHP < 0 {
			return fmt.Errorf("participant %s temp_hp %d is negative", p.ID, p.TempHP)
		}
	}
	return nil
}

// Clone returns a deep copy so stores can hand out aggregates without sharing memory
func (e *Encounter) Clone() *Encounter {
	if e == nil {
		return nil
	}

	out := *e
	out.Description = cloneString(e.Description)

	out.Participants = make([]*Participant, 0, len(e.Participants))
	for _, p := range e.Participants {
		out.Participants = append(out.Participants, p.Clone())
	}

	out.LairActions = make([]*LairAction, 0, len(e.LairActions))
	for _, la := range e.LairActions {
		copied := *la
		copied.Description = cloneString(la.Description)
		out.LairActions = append(out.LairActions, &copied)
	}

	return &out
}

// Clone returns a deep copy of the participant
func (p *Participant) Clone() *Participant {
	if p == nil {
		return nil
	}

	out := *p
	out.CharacterID = cloneString(p.CharacterID)
	out.CreatureID = cloneString(p.CreatureID)
	out.Notes = cloneString(p.Notes)
	if p.InitiativeRoll != nil {
		roll := *p.InitiativeRoll
		out.InitiativeRoll = &roll
	}
	out.Conditions = append([]string{}, p.Conditions...)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
