package encounters

import (
	"context"
	"encoding/json"
	"log/slog"

	redis "github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/rpg-tracker/internal/entities"
	"github.com/KirkDiggler/rpg-tracker/internal/errors"
	"github.com/KirkDiggler/rpg-tracker/internal/pkg/clock"
	redisclient "github.com/KirkDiggler/rpg-tracker/internal/redis"
)

const (
	encounterKeyPrefix = "encounter:"
	ownerIndexPrefix   = "encounter:owner:"

	// participantIndexKey is a hash of participant ID to encounter ID
	participantIndexKey = "encounter:participants"
)

func encounterKey(id string) string {
	return encounterKeyPrefix + id
}

func ownerIndexKey(ownerID string) string {
	return ownerIndexPrefix + ownerID
}

// getter is the slice of redis.Cmdable shared by the client and a WATCH tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis encounter repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a Redis-backed encounter repository.
//
// Each encounter is one JSON document at encounter:<id>. The owner index is
// a sorted set at encounter:owner:<ownerId> scored by updated_at in
// milliseconds, so listing is a reverse range scan. Participants are
// indexed in the encounter:participants hash.
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
	}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	stored := input.Encounter.Clone()
	stored.Version = 1

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal encounter")
	}

	key := encounterKey(stored.ID)
	created, err := r.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create encounter")
	}
	if !created {
		return nil, errors.AlreadyExistsf("encounter with ID %s already exists", stored.ID)
	}

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, ownerIndexKey(stored.OwnerID), indexEntry(stored))
	if len(stored.Participants) > 0 {
		pipe.HSet(ctx, participantIndexKey, participantIndexValues(stored)...)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		// Without the index entry the encounter would be unreachable from
		// listings, so undo the write.
		r.client.Del(ctx, key)
		return nil, errors.Wrapf(err, "failed to index encounter")
	}

	return &CreateOutput{Encounter: stored}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	encounter, err := r.load(ctx, r.client, input.EncounterID)
	if err != nil {
		return nil, err
	}

	return &GetOutput{Encounter: encounter}, nil
}

func (r *redisRepository) ListByOwner(ctx context.Context, input ListByOwnerInput) (*ListByOwnerOutput, error) {
	if input.OwnerID == "" {
		return nil, errors.InvalidArgument(errOwnerIDEmpty)
	}

	indexKey := ownerIndexKey(input.OwnerID)
	slog.DebugContext(ctx, "listing encounters by owner index",
		"owner_id", input.OwnerID,
		"index_key", indexKey)

	ids, err := r.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read encounter index %s", indexKey)
	}
	if len(ids) == 0 {
		return &ListByOwnerOutput{Encounters: []*entities.Encounter{}}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = encounterKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load encounters for owner %s", input.OwnerID)
	}

	list := make([]*entities.Encounter, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			slog.WarnContext(ctx, "encounter not found, cleaning up index",
				"encounter_id", ids[i],
				"index_key", indexKey)
			r.client.ZRem(ctx, indexKey, ids[i])
			continue
		}

		encounter, err := decodeEncounter(raw)
		if err != nil {
			return nil, err
		}
		list = append(list, encounter)
	}

	sortByRecent(list)

	slog.DebugContext(ctx, "listed encounters by owner",
		"owner_id", input.OwnerID,
		"count", len(list))

	return &ListByOwnerOutput{Encounters: list}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.EncounterID == "" {
		return nil, errors.InvalidArgument(errEncounterIDEmpty)
	}

	existing, err := r.load(ctx, r.client, input.EncounterID)
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, encounterKey(input.EncounterID))
	pipe.ZRem(ctx, ownerIndexKey(existing.OwnerID), input.EncounterID)
	if ids := participantIDs(existing); len(ids) > 0 {
		pipe.HDel(ctx, participantIndexKey, ids...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete encounter")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) FindParticipant(ctx context.Context, input FindParticipantInput) (*FindParticipantOutput, error) {
	if input.ParticipantID == "" {
		return nil, errors.InvalidArgument(errParticipantEmpty)
	}

	encounterID, err := r.client.HGet(ctx, participantIndexKey, input.ParticipantID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, participantNotFound(input.ParticipantID)
		}
		return nil, errors.Wrapf(err, "failed to find participant")
	}

	return &FindParticipantOutput{EncounterID: encounterID}, nil
}

// Mutate uses WATCH on the encounter key. If another client writes the key
// before EXEC the transaction is discarded and the whole read-modify-write
// runs again.
func (r *redisRepository) Mutate(ctx context.Context, input MutateInput) (*MutateOutput, error) {
	if err := validateMutate(input); err != nil {
		return nil, err
	}

	key := encounterKey(input.EncounterID)

	encounter, err := withRetry(ctx, input.EncounterID, func() (*entities.Encounter, error) {
		var next *entities.Encounter

		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			current, err := r.load(ctx, tx, input.EncounterID)
			if err != nil {
				return err
			}

			next, err = applyMutation(current, input.Fn, r.clock.Now())
			if err != nil {
				return err
			}

			data, err := json.Marshal(next)
			if err != nil {
				return errors.Wrapf(err, "failed to marshal encounter")
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, 0)
				pipe.ZAdd(ctx, ownerIndexKey(next.OwnerID), indexEntry(next))
				if removed := removedParticipantIDs(current, next); len(removed) > 0 {
					pipe.HDel(ctx, participantIndexKey, removed...)
				}
				if len(next.Participants) > 0 {
					pipe.HSet(ctx, participantIndexKey, participantIndexValues(next)...)
				}
				return nil
			})
			return err
		}, key)

		switch {
		case err == nil:
			return next, nil
		case err == redis.TxFailedErr:
			return nil, errConflict
		case isDomainError(err):
			return nil, err
		default:
			return nil, errors.Wrapf(err, "failed to update encounter")
		}
	})
	if err != nil {
		return nil, err
	}

	return &MutateOutput{Encounter: encounter}, nil
}

// load reads one encounter through either the client or a watching tx
func (r *redisRepository) load(ctx context.Context, cmd getter, encounterID string) (*entities.Encounter, error) {
	raw, err := cmd.Get(ctx, encounterKey(encounterID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, notFound(encounterID)
		}
		return nil, errors.Wrapf(err, "failed to get encounter")
	}

	return decodeEncounter(raw)
}

func decodeEncounter(raw string) (*entities.Encounter, error) {
	var encounter entities.Encounter
	if err := json.Unmarshal([]byte(raw), &encounter); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal encounter")
	}
	return &encounter, nil
}

func indexEntry(encounter *entities.Encounter) redis.Z {
	return redis.Z{
		Score:  float64(encounter.UpdatedAt.UnixMilli()),
		Member: encounter.ID,
	}
}

func participantIDs(encounter *entities.Encounter) []string {
	ids := make([]string, 0, len(encounter.Participants))
	for _, p := range encounter.Participants {
		ids = append(ids, p.ID)
	}
	return ids
}

// participantIndexValues returns alternating field/value pairs for HSET
func participantIndexValues(encounter *entities.Encounter) []interface{} {
	values := make([]interface{}, 0, 2*len(encounter.Participants))
	for _, p := range encounter.Participants {
		values = append(values, p.ID, encounter.ID)
	}
	return values
}

func removedParticipantIDs(before, after *entities.Encounter) []string {
	var removed []string
	for _, p := range before.Participants {
		if found, _ := after.FindParticipant(p.ID); found == nil {
			removed = append(removed, p.ID)
		}
	}
	return removed
}

func isDomainError(err error) bool {
	var domainErr *errors.Error
	return errors.As(err, &domainErr)
}
