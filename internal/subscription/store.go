package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	domainerrors "github.com/campus-dev/go-dining-bot/internal/domain/errors"
)

// Store persists the subscriber set as a single JSON object whose keys are
// chat ids: {"123": true}. Every mutation re-reads the file, applies the
// change and rewrites the whole file before returning, so the on-disk state
// always reflects the last acknowledged command. The mutex serializes
// load-modify-save between the command loop and the daily cycle.
type Store struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// Load returns the current subscriber set. A missing file is an empty set. A
// corrupt file is logged and treated as empty rather than crashing the bot;
// prior subscribers are silently dropped in that case, hence error severity.
func (s *Store) Load(ctx context.Context) (map[int64]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Add subscribes the chat. Returns false if it was already subscribed.
func (s *Store) Add(ctx context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subscribers, err := s.load()
	if err != nil {
		return false, err
	}

	if subscribers[chatID] {
		return false, nil
	}

	subscribers[chatID] = true

	if err := s.save(subscribers); err != nil {
		return false, err
	}

	return true, nil
}

// Remove unsubscribes the chat. Returns false if it was not subscribed.
func (s *Store) Remove(ctx context.Context, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subscribers, err := s.load()
	if err != nil {
		return false, err
	}

	if !subscribers[chatID] {
		return false, nil
	}

	delete(subscribers, chatID)

	if err := s.save(subscribers); err != nil {
		return false, err
	}

	return true, nil
}

func (s *Store) load() (map[int64]bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[int64]bool{}, nil
	}

	if err != nil {
		s.logger.Error("subscriber store unreadable, treating as empty",
			"error", &domainerrors.ErrStoreCorrupt{Path: s.path, Cause: err},
		)

		return map[int64]bool{}, nil
	}

	var raw map[string]bool
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Error("subscriber store corrupt, treating as empty",
			"error", &domainerrors.ErrStoreCorrupt{Path: s.path, Cause: err},
		)

		return map[int64]bool{}, nil
	}

	subscribers := make(map[int64]bool, len(raw))

	for key, subscribed := range raw {
		if !subscribed {
			continue
		}

		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			s.logger.Warn("skipping malformed subscriber id", "id", key)
			continue
		}

		subscribers[id] = true
	}

	return subscribers, nil
}

// save writes the full set to a temp file in the same directory and renames
// it over the store, so a crash mid-write never leaves a half-written file.
func (s *Store) save(subscribers map[int64]bool) error {
	raw := make(map[string]bool, len(subscribers))
	for id := range subscribers {
		raw[strconv.FormatInt(id, 10)] = true
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding subscriber store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".subscriptions-*")
	if err != nil {
		return fmt.Errorf("creating temp subscriber store: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("writing subscriber store: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("syncing subscriber store: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("closing temp subscriber store: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("replacing subscriber store: %w", err)
	}

	return nil
}
