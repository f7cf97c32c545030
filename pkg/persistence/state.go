package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StateVersion is the current version of the state file format.
const StateVersion = 1

// ComponentState is the identity a broker, controller or device keeps
// between runs.
type ComponentState struct {
	// Version is the state file format version.
	Version int `json:"version"`

	// SavedAt is when the state was last saved.
	SavedAt time.Time `json:"saved_at"`

	// CID is the component identifier.
	CID uuid.UUID `json:"cid"`

	// Scope is the scope the component last connected on.
	Scope string `json:"scope,omitempty"`

	// UID is the last UID the component connected with. For a device using
	// a dynamic UID this is the broker's assignment.
	UID string `json:"uid,omitempty"`

	// ConnectedAt is when the component last connected to a broker.
	ConnectedAt time.Time `json:"connected_at,omitempty"`
}

// Store manages persistence of component state to a JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Save persists the state to disk. The file is replaced atomically.
func (s *Store) Save(state *ComponentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(state)
}

func (s *Store) save(state *ComponentState) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = StateVersion
	state.SavedAt = time.Now()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load reads the state from disk.
// Returns nil, nil if the file doesn't exist (empty state).
func (s *Store) Load() (*ComponentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*ComponentState, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &ComponentState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("state file %s: %w", s.path, err)
	}
	if state.Version > StateVersion {
		return nil, fmt.Errorf("state file %s: unsupported version %d", s.path, state.Version)
	}
	return state, nil
}

// Update loads the state, applies fn and saves the result. A missing file
// starts from an empty state.
func (s *Store) Update(fn func(*ComponentState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	if state == nil {
		state = &ComponentState{}
	}
	fn(state)
	return s.save(state)
}

// CID returns the stored CID. When the file has none, a new CID is
// generated and saved.
func (s *Store) CID() (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return uuid.Nil, err
	}
	if state == nil {
		state = &ComponentState{}
	}
	if state.CID != uuid.Nil {
		return state.CID, nil
	}
	state.CID = uuid.New()
	if err := s.save(state); err != nil {
		return uuid.Nil, err
	}
	return state.CID, nil
}

// Clear removes the state file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
