package store

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/photon/internal/media"
	"github.com/desertthunder/photon/internal/models"
	"github.com/desertthunder/photon/internal/shared"
	"github.com/desertthunder/photon/internal/tasks"
)

// DefaultKey is the storage key of the persisted snapshot.
const DefaultKey = "photon-state"

// Syncer forwards a payload to the device and returns the in-flight task.
type Syncer interface {
	Dispatch(ctx context.Context, payload models.SyncPayload) *tasks.Task
}

type nopSyncer struct{}

func (nopSyncer) Dispatch(_ context.Context, p models.SyncPayload) *tasks.Task {
	return tasks.Completed(tasks.Result{Label: p.Emotion})
}

// Options configures a [Store]. Nil adapters get in-memory or no-op defaults.
type Options struct {
	Storage Storage
	Syncer  Syncer
	Player  media.Player
	Colors  models.ColorModel
	Logger  *log.Logger
	Key     string
}

// Store owns the [models.AppState] for a session.
//
// Reads return copies. Every edit goes through [Store.Mutate], which persists and then syncs.
type Store struct {
	mu    sync.Mutex
	state models.AppState

	storage Storage
	syncer  Syncer
	player  media.Player
	colors  models.ColorModel
	logger  *log.Logger
	key     string
}

// New creates a [Store] holding defaults. Call [Store.Load] to overlay the persisted snapshot.
func New(opts Options) *Store {
	s := &Store{
		state:   models.NewAppState(),
		storage: opts.Storage,
		syncer:  opts.Syncer,
		player:  opts.Player,
		colors:  opts.Colors,
		logger:  opts.Logger,
		key:     opts.Key,
	}
	if s.storage == nil {
		s.storage = NewMemoryStorage()
	}
	if s.syncer == nil {
		s.syncer = nopSyncer{}
	}
	if s.player == nil {
		s.player = media.NopPlayer{}
	}
	if s.colors == nil {
		c, err := models.NewColorModel("")
		if err != nil {
			c = models.HueModel{StepSize: 10}
		}
		s.colors = c
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(io.Discard)
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	return s
}

// Colors returns the color model payloads are built with.
func (s *Store) Colors() models.ColorModel {
	return s.colors
}

// Load overlays the persisted snapshot onto the current profiles.
//
// A missing or unreadable snapshot keeps the current values and logs a warning.
// It reports whether a snapshot was applied.
func (s *Store) Load(ctx context.Context) bool {
	data, ok, err := s.storage.Read(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to read saved state", "key", s.key, "error", err)
		return false
	}
	if !ok {
		s.logger.Debug("no saved state", "key", s.key)
		return false
	}

	snap, err := models.DecodeSnapshot(data)
	if err != nil {
		s.logger.Warn("failed to parse saved state", "key", s.key, "error", err)
		return false
	}

	s.mu.Lock()
	snap.Apply(&s.state)
	s.mu.Unlock()
	return true
}

// Save writes both profiles to storage. Failures are logged, never returned.
func (s *Store) Save(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) {
	data, err := json.Marshal(models.SnapshotOf(s.state))
	if err != nil {
		s.logger.Warn("failed to encode state", "error", err)
		return
	}
	if err := s.storage.Write(ctx, s.key, data); err != nil {
		s.logger.Warn("failed to save state", "key", s.key, "error", err)
	}
}

// Active returns a copy of the active profile.
func (s *Store) Active() models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Profiles[s.state.Active]
}

// ActiveLabel returns the label edits currently target.
func (s *Store) ActiveLabel() models.Label {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Active
}

// Profile returns a copy of the profile for l.
func (s *Store) Profile(l models.Label) (models.Profile, error) {
	if _, err := models.ParseLabel(string(l)); err != nil {
		return models.Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Profiles[l], nil
}

// State returns a deep copy of the whole state.
func (s *Store) State() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// SetActiveLabel switches the active profile, stops any preview and sends the newly
// active profile as a non-personalizing sync.
func (s *Store) SetActiveLabel(ctx context.Context, l models.Label) (*tasks.Task, error) {
	if _, err := models.ParseLabel(string(l)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state.Active = l
	p := s.state.Profiles[l]
	s.mu.Unlock()

	if err := s.player.Stop(); err != nil {
		s.logger.Warn("failed to stop preview", "error", err)
	}
	return s.sync(ctx, l, p, false), nil
}

// Mutate merges u into the profile for l, saves, and syncs it.
//
// This is the single path for color, track and motor edits. Applying the same update
// twice leaves the same profile as applying it once.
func (s *Store) Mutate(ctx context.Context, l models.Label, u models.ProfileUpdate, personalizing bool) (*tasks.Task, error) {
	if _, err := models.ParseLabel(string(l)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	p := u.Apply(s.state.Profiles[l]).Normalize(l)
	s.state.Profiles[l] = p
	s.saveLocked(ctx)
	s.mu.Unlock()

	return s.sync(ctx, l, p, personalizing), nil
}

// MutateActive is [Store.Mutate] on the active label with personalizing set.
func (s *Store) MutateActive(ctx context.Context, u models.ProfileUpdate) *tasks.Task {
	task, _ := s.Mutate(ctx, s.ActiveLabel(), u, true)
	return task
}

// Sync resends the stored profile for l without personalizing.
func (s *Store) Sync(ctx context.Context, l models.Label) (*tasks.Task, error) {
	p, err := s.Profile(l)
	if err != nil {
		return nil, err
	}
	return s.sync(ctx, l, p, false), nil
}

// SyncAll resends both profiles without personalizing, negative first.
func (s *Store) SyncAll(ctx context.Context) []*tasks.Task {
	state := s.State()
	out := make([]*tasks.Task, 0, 2)
	for _, l := range []models.Label{models.Negative, models.Positive} {
		out = append(out, s.sync(ctx, l, state.Profiles[l], false))
	}
	return out
}

func (s *Store) sync(ctx context.Context, l models.Label, p models.Profile, personalizing bool) *tasks.Task {
	return s.syncer.Dispatch(ctx, models.NewSyncPayload(l, p, s.colors, personalizing))
}

// Preview plays trackID through the player.
func (s *Store) Preview(ctx context.Context, trackID string) error {
	return s.player.Play(ctx, trackID)
}

// StopPreview stops any preview playback.
func (s *Store) StopPreview() error {
	return s.player.Stop()
}
