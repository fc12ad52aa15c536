package taskly

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/taskly/internal/core/eventbus"
	"github.com/colonyops/taskly/internal/core/kv"
	"github.com/colonyops/taskly/internal/core/progress"
)

// keyUser is the scoped storage key for the user profile record.
const keyUser = "user"

// ProgressService owns the singleton user-progress record: XP, level, and
// the daily streak. It persists after every mutation and publishes level.up
// and streak.changed events.
type ProgressService struct {
	store *kv.TypedKV[progress.Profile]
	bus   *eventbus.EventBus
	log   zerolog.Logger
	now   func() time.Time

	mu      sync.Mutex
	profile progress.Profile
}

// NewProgressService creates a new ProgressService.
func NewProgressService(store kv.KV, bus *eventbus.EventBus, log zerolog.Logger) *ProgressService {
	return &ProgressService{
		store:   kv.Scoped[progress.Profile](store, "state"),
		bus:     bus,
		log:     log.With().Str("component", "progress-service").Logger(),
		now:     time.Now,
		profile: progress.NewProfile(),
	}
}

// Load reads the persisted profile. A missing record means first run and
// yields a fresh level-1 profile; read failures degrade to defaults.
func (s *ProgressService) Load(ctx context.Context) {
	p, err := s.store.Get(ctx, keyUser)
	if err != nil {
		if !kv.IsNotFound(err) {
			s.log.Warn().Err(err).Msg("could not load profile, using defaults")
		}
		return
	}

	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
}

// Profile returns a snapshot of the current profile.
func (s *ProgressService) Profile() progress.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// AddXP grants XP, publishing one level.up event per level gained, and
// persists the result.
func (s *ProgressService) AddXP(ctx context.Context, amount int) progress.Profile {
	s.mu.Lock()
	p, levels := progress.ApplyXP(s.profile, amount)
	s.profile = p
	s.mu.Unlock()

	for i := levels; i > 0; i-- {
		s.bus.PublishLevelUp(eventbus.LevelUpPayload{Level: p.Level - i + 1})
	}

	s.persist(ctx)
	return p
}

// CheckStreak applies the once-per-session streak rule for today and
// persists when anything changed.
func (s *ProgressService) CheckStreak(ctx context.Context) progress.Profile {
	s.mu.Lock()
	p, changed := progress.CheckStreak(s.profile, s.now())
	s.profile = p
	s.mu.Unlock()

	if changed {
		s.bus.PublishStreakChanged(eventbus.StreakChangedPayload{Streak: p.Streak})
		s.persist(ctx)
	}

	return p
}

// persist writes the profile best-effort: failures are logged and surfaced
// as save.failed events, never returned.
func (s *ProgressService) persist(ctx context.Context) {
	s.mu.Lock()
	p := s.profile
	s.mu.Unlock()

	if err := s.store.Set(ctx, keyUser, p); err != nil {
		s.log.Warn().Err(err).Msg("could not persist profile")
		s.bus.PublishSaveFailed(eventbus.SaveFailedPayload{Key: keyUser, Err: err})
	}
}
