package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/workflow"
)

// SchemaVersion tags every saved snapshot. Bump it when the snapshot layout
// changes; older records are discarded on load.
const SchemaVersion = 1

var (
	// ErrPersistence marks failures to read or write the durable snapshot.
	ErrPersistence = errors.New("persistence failure")
	// ErrNoSnapshot is returned by a Backend when nothing is stored.
	ErrNoSnapshot = errors.New("no snapshot stored")
)

// Backend moves the encoded snapshot in and out of durable storage. Write
// must replace the stored record atomically.
type Backend interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
	Close() error
}

type envelope struct {
	Version  int               `json:"version"`
	SavedAt  time.Time         `json:"savedAt"`
	Snapshot workflow.Snapshot `json:"snapshot"`
}

// Store implements workflow.Persister over a Backend.
type Store struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time
}

// New wraps backend.
func New(backend Backend, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logging.NewComponentLogger(logger, "statestore").With(logging.String("backend", backend.Name())),
		now:     time.Now,
	}
}

// Open builds the backend selected in cfg.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Persistence.Backend {
	case config.BackendFile:
		if err = cfg.EnsureDirectories(); err == nil {
			backend = NewFileBackend(cfg.SnapshotPath())
		}
	case config.BackendRedis:
		backend, err = OpenRedis(ctx, RedisOptions{
			Addr:     cfg.Persistence.RedisAddr,
			Password: cfg.Persistence.RedisPassword,
			DB:       cfg.Persistence.RedisDB,
			Key:      cfg.Persistence.RedisKey,
		})
	default:
		if err = cfg.EnsureDirectories(); err == nil {
			backend, err = OpenSQLite(ctx, cfg.SnapshotPath())
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s backend: %w", ErrPersistence, cfg.Persistence.Backend, err)
	}
	return New(backend, logger), nil
}

// Close releases the backend.
func (s *Store) Close() error {
	if s == nil || s.backend == nil {
		return nil
	}
	return s.backend.Close()
}

// Save replaces the stored snapshot.
func (s *Store) Save(ctx context.Context, snap workflow.Snapshot) error {
	data, err := json.Marshal(envelope{Version: SchemaVersion, SavedAt: s.now().UTC(), Snapshot: snap})
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %w", ErrPersistence, err)
	}
	if err := s.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("%w: write snapshot: %w", ErrPersistence, err)
	}
	return nil
}

// Load returns the stored snapshot with loading entries settled and polling
// jobs failed. Unreadable or outdated records are deleted and reported as
// absent.
func (s *Store) Load(ctx context.Context) (workflow.Snapshot, bool) {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		return workflow.Snapshot{}, false
	}
	if err != nil {
		logging.WarnWithContext(s.logger, "snapshot read failed", "snapshot_unreadable",
			logging.String(logging.FieldImpact, "starting with an empty project"),
			logging.String(logging.FieldErrorHint, "check the state directory or redis connection"),
			logging.Error(err),
		)
		return workflow.Snapshot{}, false
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.discard(ctx, "snapshot could not be decoded", logging.Error(err))
		return workflow.Snapshot{}, false
	}
	if env.Version != SchemaVersion {
		s.discard(ctx, "snapshot schema version mismatch",
			logging.Int("stored_version", env.Version),
			logging.Int("expected_version", SchemaVersion),
		)
		return workflow.Snapshot{}, false
	}
	s.logger.Debug("snapshot loaded", logging.String("saved_at", env.SavedAt.Format(time.RFC3339)))
	return env.Snapshot.Settled(), true
}

func (s *Store) discard(ctx context.Context, msg string, attrs ...logging.Attr) {
	attrs = append(attrs,
		logging.String(logging.FieldImpact, "stored project discarded; starting with an empty project"),
		logging.String(logging.FieldErrorHint, "the snapshot was written by another version"),
	)
	logging.WarnWithContext(s.logger, msg, "snapshot_discarded", attrs...)
	if err := s.backend.Delete(ctx); err != nil {
		s.logger.Debug("discard delete failed", logging.Error(err))
	}
}

// Purge deletes the stored snapshot. Purging an empty store succeeds.
func (s *Store) Purge(ctx context.Context) error {
	if err := s.backend.Delete(ctx); err != nil {
		return fmt.Errorf("%w: delete snapshot: %w", ErrPersistence, err)
	}
	return nil
}
