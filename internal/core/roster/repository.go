package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/charleschow/courtside/internal/core/rules"
	"github.com/charleschow/courtside/internal/telemetry"
)

const sportKeyPrefix = "sport:"

// KV is the opaque persistent store rosters and settings live in. Live match
// state never goes through it.
type KV interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Repository reads and writes sports (settings + teams) in a KV store.
// Concurrent reads of the same sport share one store round trip.
type Repository struct {
	kv    KV
	group singleflight.Group

	// serializes read-modify-write updates
	writeMu sync.Mutex
}

func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// Seed writes every sport that is not already stored. Existing records win,
// so user edits survive restarts.
func (r *Repository) Seed(ctx context.Context, sports []Sport) (int, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	added := 0
	for _, s := range sports {
		_, found, err := r.kv.Load(ctx, sportKey(s.ID))
		if err != nil {
			return added, fmt.Errorf("seed %s: %w", s.ID, err)
		}
		if found {
			continue
		}
		if err := r.save(ctx, s); err != nil {
			return added, fmt.Errorf("seed %s: %w", s.ID, err)
		}
		added++
	}
	return added, nil
}

// Sport returns a private copy of the stored sport.
func (r *Repository) Sport(ctx context.Context, id string) (Sport, error) {
	v, err, _ := r.group.Do(id, func() (any, error) {
		return r.load(ctx, id)
	})
	if err != nil {
		return Sport{}, err
	}
	return v.(Sport).Clone(), nil
}

// Sports lists every stored sport ordered by id.
func (r *Repository) Sports(ctx context.Context) ([]Sport, error) {
	keys, err := r.kv.Keys(ctx, sportKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list sports: %w", err)
	}
	sort.Strings(keys)

	out := make([]Sport, 0, len(keys))
	for _, k := range keys {
		s, err := r.Sport(ctx, strings.TrimPrefix(k, sportKeyPrefix))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// PutTeam creates or replaces one team of a sport. A player may only be
// rostered on one team of the sport. Missing team and player ids are
// derived from their names.
func (r *Repository) PutTeam(ctx context.Context, sportID string, team Team) (Sport, error) {
	team = team.normalized()
	if err := team.Validate(); err != nil {
		return Sport{}, err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	s, err := r.load(ctx, sportID)
	if err != nil {
		return Sport{}, err
	}

	taken := make(map[string]string)
	for _, t := range s.Teams {
		if t.ID == team.ID {
			continue
		}
		for _, p := range t.Players {
			taken[p.ID] = t.ID
		}
	}
	for _, p := range team.Players {
		if other, ok := taken[p.ID]; ok {
			return Sport{}, fmt.Errorf("%w: player %s already on %s", ErrInvalidTeam, p.ID, other)
		}
	}

	replaced := false
	for i, t := range s.Teams {
		if t.ID == team.ID {
			s.Teams[i] = team.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		s.Teams = append(s.Teams, team.Clone())
	}

	if err := r.save(ctx, s); err != nil {
		return Sport{}, err
	}
	return s.Clone(), nil
}

// PutSettings replaces the stored settings of a sport.
func (r *Repository) PutSettings(ctx context.Context, sportID string, settings rules.Settings) (Sport, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	s, err := r.load(ctx, sportID)
	if err != nil {
		return Sport{}, err
	}
	s.Settings = settings
	if err := r.save(ctx, s); err != nil {
		return Sport{}, err
	}
	return s.Clone(), nil
}

// Matchup freezes the two chosen rosters for a new session.
func (r *Repository) Matchup(ctx context.Context, sportID, homeID, awayID string) (Matchup, error) {
	if homeID == awayID {
		return Matchup{}, ErrSameTeam
	}
	s, err := r.Sport(ctx, sportID)
	if err != nil {
		return Matchup{}, err
	}
	home, ok := s.Team(homeID)
	if !ok {
		return Matchup{}, fmt.Errorf("%w: %s", ErrTeamNotFound, homeID)
	}
	away, ok := s.Team(awayID)
	if !ok {
		return Matchup{}, fmt.Errorf("%w: %s", ErrTeamNotFound, awayID)
	}

	return Matchup{
		SportID:   s.ID,
		SportName: s.Name,
		Settings:  s.Settings,
		Home:      home.Clone(),
		Away:      away.Clone(),
	}, nil
}

func (r *Repository) load(ctx context.Context, id string) (Sport, error) {
	data, found, err := r.kv.Load(ctx, sportKey(id))
	if err != nil {
		return Sport{}, fmt.Errorf("load sport %s: %w", id, err)
	}
	if !found {
		return Sport{}, fmt.Errorf("%w: %s", ErrSportNotFound, id)
	}
	telemetry.Metrics.RosterLoads.Inc()

	var s Sport
	if err := json.Unmarshal(data, &s); err != nil {
		return Sport{}, fmt.Errorf("decode sport %s: %w", id, err)
	}
	return s, nil
}

func (r *Repository) save(ctx context.Context, s Sport) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode sport %s: %w", s.ID, err)
	}
	if err := r.kv.Save(ctx, sportKey(s.ID), data); err != nil {
		return fmt.Errorf("save sport %s: %w", s.ID, err)
	}
	return nil
}

func sportKey(id string) string { return sportKeyPrefix + id }
