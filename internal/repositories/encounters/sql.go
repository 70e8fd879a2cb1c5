package encounters

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
	"github.com/KirkDiggler/rpg-tracker/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-tracker/internal/repositories/encounters/migrations"
	"github.com/KirkDiggler/rpg-tracker/internal/sqldb"
)

const encounterColumns = `id, owner_id, name, description, status, round, turn, is_active, version, created_at, updated_at`

const participantColumns = `p.id, p.encounter_id, p.type, p.character_id, p.creature_id, p.name,
	p.initiative, p.initiative_roll, p.current_hp, p.max_hp, p.temp_hp, p.ac,
	p.conditions, p.is_active, p.notes`

const lairActionColumns = `l.id, l.encounter_id, l.name, l.description`

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlRepository struct {
	db    *sqldb.DB
	clock clock.Clock
}

// SQLConfig contains configuration for the SQL encounter repository
type SQLConfig struct {
	DB    *sqldb.DB
	Clock clock.Clock
}

// Validate validates the SQLConfig
func (cfg *SQLConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.DB == nil || cfg.DB.DB == nil {
		return errors.InvalidArgument("db cannot be nil")
	}
	return nil
}

// NewSQL creates a repository over an already migrated database. Timestamps
// are stored as UTC milliseconds.
func NewSQL(cfg *SQLConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &sqlRepository{db: cfg.DB, clock: c}, nil
}

// Migrate applies the encounter schema for the database's dialect
func Migrate(ctx context.Context, db *sqldb.DB) ([]string, error) {
	return sqldb.ApplyMigrations(ctx, db, migrations.FS, string(db.Dialect))
}

func (r *sqlRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	stored := input.Encounter.Clone()
	stored.Version = 1
	stored.CreatedAt = truncateMillis(stored.CreatedAt)
	stored.UpdatedAt = truncateMillis(stored.UpdatedAt)

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.db.Rebind(`INSERT INTO encounters (`+encounterColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			stored.ID,
			stored.OwnerID,
			stored.Name,
			toNullString(stored.Description),
			string(stored.Status),
			stored.Round,
			stored.Turn,
			stored.IsActive,
			stored.Version,
			toMillis(stored.CreatedAt),
			toMillis(stored.UpdatedAt),
		)
		if err != nil {
			if sqldb.IsUniqueViolation(err) {
				return errors.AlreadyExistsf("encounter with ID %s already exists", stored.ID)
			}
			return errors.Wrapf(err, "failed to insert encounter")
		}

		return r.writeChildren(ctx, tx, stored)
	})
	if err != nil {
		return nil, err
	}

	return &CreateOutput{Encounter: stored}, nil
}

func (r *sqlRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	encounter, err := r.load(ctx, r.db, input.EncounterID)
	if err != nil {
		return nil, err
	}

	return &GetOutput{Encounter: encounter}, nil
}

func (r *sqlRepository) ListByOwner(ctx context.Context, input ListByOwnerInput) (*ListByOwnerOutput, error) {
	if input.OwnerID == "" {
		return nil, errors.InvalidArgument(errOwnerIDEmpty)
	}

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`SELECT `+encounterColumns+`
		FROM encounters WHERE owner_id = ? ORDER BY updated_at DESC, id DESC`), input.OwnerID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list encounters")
	}

	list := make([]*entities.Encounter, 0)
	byID := make(map[string]*entities.Encounter)
	for rows.Next() {
		encounter, err := scanEncounter(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		list = append(list, encounter)
		byID[encounter.ID] = encounter
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return &ListByOwnerOutput{Encounters: list}, nil
	}

	participants, err := r.queryParticipants(ctx, r.db, `JOIN encounters e ON e.id = p.encounter_id
		WHERE e.owner_id = ? ORDER BY p.encounter_id, p.position`, input.OwnerID)
	if err != nil {
		return nil, err
	}
	for _, p := range participants {
		if encounter, ok := byID[p.EncounterID]; ok {
			encounter.Participants = append(encounter.Participants, p)
		}
	}

	lairActions, err := r.queryLairActions(ctx, r.db, `JOIN encounters e ON e.id = l.encounter_id
		WHERE e.owner_id = ? ORDER BY l.encounter_id, l.position`, input.OwnerID)
	if err != nil {
		return nil, err
	}
	for _, la := range lairActions {
		if encounter, ok := byID[la.EncounterID]; ok {
			encounter.LairActions = append(encounter.LairActions, la)
		}
	}

	return &ListByOwnerOutput{Encounters: list}, nil
}

func (r *sqlRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if err := r.deleteChildren(ctx, tx, input.EncounterID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM encounters WHERE id = ?`), input.EncounterID)
		if err != nil {
			return errors.Wrapf(err, "failed to delete encounter")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrapf(err, "failed to delete encounter")
		}
		if n == 0 {
			return notFound(input.EncounterID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &DeleteOutput{}, nil
}

func (r *sqlRepository) FindParticipant(ctx context.Context, input FindParticipantInput) (*FindParticipantOutput, error) {
	if input.ParticipantID == "" {
		return nil, errors.InvalidArgument(errParticipantEmpty)
	}

	var encounterID string
	err := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT encounter_id FROM participants WHERE id = ?`), input.ParticipantID).
		Scan(&encounterID)
	if err == sql.ErrNoRows {
		return nil, participantNotFound(input.ParticipantID)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find participant")
	}

	return &FindParticipantOutput{EncounterID: encounterID}, nil
}

// Mutate reads and writes inside one transaction. The encounter row is only
// updated WHERE version still matches what was read; zero affected rows
// means another writer won and the attempt is retried.
func (r *sqlRepository) Mutate(ctx context.Context, input MutateInput) (*MutateOutput, error) {
	if err := validateMutate(input); err != nil {
		return nil, err
	}

	encounter, err := withRetry(ctx, input.EncounterID, func() (*entities.Encounter, error) {
		var next *entities.Encounter

		err := r.inTx(ctx, func(tx *sql.Tx) error {
			current, err := r.load(ctx, tx, input.EncounterID)
			if err != nil {
				return err
			}

			next, err = applyMutation(current, input.Fn, r.clock.Now())
			if err != nil {
				return err
			}
			next.UpdatedAt = truncateMillis(next.UpdatedAt)

			res, err := tx.ExecContext(ctx, r.db.Rebind(`UPDATE encounters
				SET name = ?, description = ?, status = ?, round = ?, turn = ?, is_active = ?,
				    version = ?, updated_at = ?
				WHERE id = ? AND version = ?`),
				next.Name,
				toNullString(next.Description),
				string(next.Status),
				next.Round,
				next.Turn,
				next.IsActive,
				next.Version,
				toMillis(next.UpdatedAt),
				next.ID,
				current.Version,
			)
			if err != nil {
				return errors.Wrapf(err, "failed to update encounter")
			}
			n, err := res.RowsAffected()
			if err != nil {
				return errors.Wrapf(err, "failed to update encounter")
			}
			if n == 0 {
				return errConflict
			}

			if err := r.deleteChildren(ctx, tx, next.ID); err != nil {
				return err
			}
			return r.writeChildren(ctx, tx, next)
		})
		if err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	return &MutateOutput{Encounter: encounter}, nil
}

func (r *sqlRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to begin transaction")
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(err, "failed to commit transaction")
	}
	return nil
}

func (r *sqlRepository) load(ctx context.Context, q querier, encounterID string) (*entities.Encounter, error) {
	row := q.QueryRowContext(ctx, r.db.Rebind(`SELECT `+encounterColumns+` FROM encounters WHERE id = ?`), encounterID)

	encounter, err := scanEncounter(row)
	if err == sql.ErrNoRows {
		return nil, notFound(encounterID)
	}
	if err != nil {
		return nil, err
	}

	encounter.Participants, err = r.queryParticipants(ctx, q, `WHERE p.encounter_id = ? ORDER BY p.position`, encounterID)
	if err != nil {
		return nil, err
	}

	encounter.LairActions, err = r.queryLairActions(ctx, q, `WHERE l.encounter_id = ? ORDER BY l.position`, encounterID)
	if err != nil {
		return nil, err
	}

	return encounter, nil
}

func (r *sqlRepository) queryParticipants(ctx context.Context, q querier, where string, args ...any) ([]*entities.Participant, error) {
	rows, err := q.QueryContext(ctx, r.db.Rebind(`SELECT `+participantColumns+` FROM participants p `+where), args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query participants")
	}

	out := make([]*entities.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, p)
	}

	return out, closeRows(rows)
}

func (r *sqlRepository) queryLairActions(ctx context.Context, q querier, where string, args ...any) ([]*entities.LairAction, error) {
	rows, err := q.QueryContext(ctx, r.db.Rebind(`SELECT `+lairActionColumns+` FROM lair_actions l `+where), args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query lair actions")
	}

	out := make([]*entities.LairAction, 0)
	for rows.Next() {
		var (
			la          entities.LairAction
			description sql.NullString
		)
		if err := rows.Scan(&la.ID, &la.EncounterID, &la.Name, &description); err != nil {
			_ = rows.Close()
			return nil, errors.Wrapf(err, "failed to scan lair action")
		}
		la.Description = fromNullString(description)
		out = append(out, &la)
	}

	return out, closeRows(rows)
}

func (r *sqlRepository) deleteChildren(ctx context.Context, tx *sql.Tx, encounterID string) error {
	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM participants WHERE encounter_id = ?`), encounterID); err != nil {
		return errors.Wrapf(err, "failed to clear participants")
	}
	if _, err := tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM lair_actions WHERE encounter_id = ?`), encounterID); err != nil {
		return errors.Wrapf(err, "failed to clear lair actions")
	}
	return nil
}

// writeChildren inserts the roster and lair actions. position keeps the
// insertion order the aggregate relies on.
func (r *sqlRepository) writeChildren(ctx context.Context, tx *sql.Tx, encounter *entities.Encounter) error {
	insertParticipant := r.db.Rebind(`INSERT INTO participants (
			id, encounter_id, position, type, character_id, creature_id, name,
			initiative, initiative_roll, current_hp, max_hp, temp_hp, ac,
			conditions, is_active, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	for i, p := range encounter.Participants {
		conditions, err := json.Marshal(nonNilStrings(p.Conditions))
		if err != nil {
			return errors.Wrapf(err, "failed to marshal conditions")
		}

		_, err = tx.ExecContext(ctx, insertParticipant,
			p.ID,
			encounter.ID,
			i,
			string(p.Type),
			toNullString(p.CharacterID),
			toNullString(p.CreatureID),
			p.Name,
			p.Initiative,
			toNullInt(p.InitiativeRoll),
			p.CurrentHP,
			p.MaxHP,
			p.TempHP,
			p.AC,
			string(conditions),
			p.IsActive,
			toNullString(p.Notes),
		)
		if err != nil {
			if sqldb.IsUniqueViolation(err) {
				return errors.AlreadyExistsf("participant with ID %s already exists", p.ID)
			}
			return errors.Wrapf(err, "failed to insert participant")
		}
	}

	insertLairAction := r.db.Rebind(`INSERT INTO lair_actions (id, encounter_id, position, name, description)
		VALUES (?, ?, ?, ?, ?)`)

	for i, la := range encounter.LairActions {
		if _, err := tx.ExecContext(ctx, insertLairAction, la.ID, encounter.ID, i, la.Name, toNullString(la.Description)); err != nil {
			if sqldb.IsUniqueViolation(err) {
				return errors.AlreadyExistsf("lair action with ID %s already exists", la.ID)
			}
			return errors.Wrapf(err, "failed to insert lair action")
		}
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEncounter(row scanner) (*entities.Encounter, error) {
	var (
		encounter   entities.Encounter
		description sql.NullString
		status      string
		createdAt   int64
		updatedAt   int64
	)

	err := row.Scan(
		&encounter.ID,
		&encounter.OwnerID,
		&encounter.Name,
		&description,
		&status,
		&encounter.Round,
		&encounter.Turn,
		&encounter.IsActive,
		&encounter.Version,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan encounter")
	}

	encounter.Description = fromNullString(description)
	encounter.Status = entities.EncounterStatus(status)
	encounter.CreatedAt = fromMillis(createdAt)
	encounter.UpdatedAt = fromMillis(updatedAt)
	encounter.Participants = []*entities.Participant{}
	encounter.LairActions = []*entities.LairAction{}

	return &encounter, nil
}

func scanParticipant(row scanner) (*entities.Participant, error) {
	var (
		p              entities.Participant
		participantTyp string
		characterID    sql.NullString
		creatureID     sql.NullString
		initiativeRoll sql.NullInt64
		conditions     string
		notes          sql.NullString
	)

	err := row.Scan(
		&p.ID,
		&p.EncounterID,
		&participantTyp,
		&characterID,
		&creatureID,
		&p.Name,
		&p.Initiative,
		&initiativeRoll,
		&p.CurrentHP,
		&p.MaxHP,
		&p.TempHP,
		&p.AC,
		&conditions,
		&p.IsActive,
		&notes,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan participant")
	}

	p.Type = entities.ParticipantType(participantTyp)
	p.CharacterID = fromNullString(characterID)
	p.CreatureID = fromNullString(creatureID)
	p.Notes = fromNullString(notes)
	if initiativeRoll.Valid {
		roll := int(initiativeRoll.Int64)
		p.InitiativeRoll = &roll
	}

	p.Conditions = []string{}
	if conditions != "" {
		if err := json.Unmarshal([]byte(conditions), &p.Conditions); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal conditions for participant %s", p.ID)
		}
	}

	return &p, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return errors.Wrapf(err, "failed to read rows")
	}
	if err := rows.Close(); err != nil {
		return errors.Wrapf(err, "failed to close rows")
	}
	return nil
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func toNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func truncateMillis(value time.Time) time.Time {
	return value.UTC().Truncate(time.Millisecond)
}
